// Package config provides configuration management for the butterfly scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"nifty-butterfly/internal/butterfly"
)

// Config holds all application configuration.
type Config struct {
	Scanner     ScannerConfig `mapstructure:"scanner"`
	Feed        FeedConfig    `mapstructure:"feed"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately

	// ConfigDir is the directory configuration was loaded from. State files
	// (session, journal) live alongside the config so --config moves them
	// together.
	ConfigDir string `mapstructure:"-"`
}

// Dir returns the directory application state belongs in.
func (c *Config) Dir() string {
	if c.ConfigDir != "" {
		return c.ConfigDir
	}
	return DefaultConfigDir()
}

// ScannerConfig holds the butterfly analysis tables and thresholds.
type ScannerConfig struct {
	Gaps              []int                `mapstructure:"gaps"`
	RatioLegs         []butterfly.RatioLeg `mapstructure:"ratio_legs"`
	MaxValuePercent   float64              `mapstructure:"max_value_percent"`
	TradeValuePercent float64              `mapstructure:"trade_value_percent"`
	NearATMBands      int                  `mapstructure:"near_atm_bands"`
	GoodGapMax        int                  `mapstructure:"good_gap_max"`
	MaxTrades         int                  `mapstructure:"max_trades"`
}

// FeedConfig holds market-data acquisition configuration.
type FeedConfig struct {
	Symbol          string        `mapstructure:"symbol"`           // underlying, e.g. NIFTY
	Exchange        string        `mapstructure:"exchange"`         // spot exchange, e.g. NSE
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // poller cadence
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// Credentials holds API credentials.
type Credentials struct {
	Kite KiteCredentials `mapstructure:"kite"`
}

// KiteCredentials holds Zerodha Kite Connect API credentials.
type KiteCredentials struct {
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	UserID     string `mapstructure:"user_id"`
	Password   string `mapstructure:"password"`    // For auto-login
	TOTPSecret string `mapstructure:"totp_secret"` // For auto-login with 2FA
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nifty-butterfly"
	}
	return filepath.Join(home, ".config", "nifty-butterfly")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{ConfigDir: configDir}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	def := butterfly.DefaultConfig()
	v.SetDefault("scanner.gaps", def.Gaps)
	v.SetDefault("scanner.max_value_percent", def.MaxValuePercent)
	v.SetDefault("scanner.trade_value_percent", def.TradeValuePercent)
	v.SetDefault("scanner.near_atm_bands", def.NearATMBands)
	v.SetDefault("scanner.good_gap_max", def.GoodGapMax)
	v.SetDefault("scanner.max_trades", def.MaxTrades)
	v.SetDefault("feed.symbol", "NIFTY")
	v.SetDefault("feed.exchange", "NSE")
	v.SetDefault("feed.refresh_interval", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if terr := createTemplateConfig(configDir); terr != nil {
				return terr
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Credentials.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_API_SECRET"); v != "" {
		cfg.Credentials.Kite.APISecret = v
	}
	if v := os.Getenv("KITE_USER_ID"); v != "" {
		cfg.Credentials.Kite.UserID = v
	}
	if v := os.Getenv("BUTTERFLY_SYMBOL"); v != "" {
		cfg.Feed.Symbol = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Scanner.MaxValuePercent < 0 || c.Scanner.MaxValuePercent > 100 {
		return fmt.Errorf("scanner.max_value_percent must be between 0 and 100")
	}
	if c.Scanner.TradeValuePercent < 0 || c.Scanner.TradeValuePercent > c.Scanner.MaxValuePercent {
		return fmt.Errorf("scanner.trade_value_percent must be between 0 and max_value_percent")
	}
	for _, gap := range c.Scanner.Gaps {
		if gap <= 0 {
			return fmt.Errorf("scanner.gaps must be positive, got %d", gap)
		}
	}
	for _, leg := range c.Scanner.RatioLegs {
		if leg.Gap <= 0 || leg.Ratio <= 0 {
			return fmt.Errorf("scanner.ratio_legs entries must be positive, got %+v", leg)
		}
	}
	if c.Feed.RefreshInterval < time.Second {
		return fmt.Errorf("feed.refresh_interval must be at least 1s")
	}
	if c.Feed.Symbol == "" {
		return fmt.Errorf("feed.symbol is required")
	}
	return nil
}

// ScannerButterflyConfig maps the scanner section to the analysis package's
// configuration, falling back to defaults for unset tables.
func (c *Config) ScannerButterflyConfig() butterfly.Config {
	return butterfly.Config{
		Gaps:              c.Scanner.Gaps,
		RatioLegs:         c.Scanner.RatioLegs,
		MaxValuePercent:   c.Scanner.MaxValuePercent,
		TradeValuePercent: c.Scanner.TradeValuePercent,
		NearATMBands:      c.Scanner.NearATMBands,
		GoodGapMax:        c.Scanner.GoodGapMax,
		MaxTrades:         c.Scanner.MaxTrades,
	}
}
