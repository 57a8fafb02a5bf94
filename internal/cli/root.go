package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nifty-butterfly/internal/butterfly"
	"nifty-butterfly/internal/config"
	"nifty-butterfly/internal/feed"
	"nifty-butterfly/internal/logging"
	"nifty-butterfly/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Source  feed.Source
	Store   store.ScanStore
	Scanner *butterfly.Scanner
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Scanner: butterfly.NewScanner(cfg.ScannerButterflyConfig()),
	}

	stateDir := cfg.Dir()

	if cfg.Credentials.Kite.APIKey != "" {
		kite := feed.NewKiteSource(feed.KiteConfig{
			APIKey:      cfg.Credentials.Kite.APIKey,
			APISecret:   cfg.Credentials.Kite.APISecret,
			UserID:      cfg.Credentials.Kite.UserID,
			Symbol:      cfg.Feed.Symbol,
			SessionPath: filepath.Join(stateDir, "session.json"),
		})
		app.Source = kite
		logger.Debug().Msg("Kite source initialized")
	}

	dbPath := filepath.Join(stateDir, "scanner.db")
	scanStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journal will be unavailable")
	} else {
		app.Store = scanStore
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "butterfly",
		Short: "NIFTY butterfly spread scanner",
		Long: `butterfly analyzes the NIFTY option chain for balanced butterfly spreads.

It prices 1-2-1 and ratio butterflies at every strike across configurable
gaps, tags the at-the-money row, and ranks the cheapest combinations into
actionable entry candidates. Chains come live from Zerodha Kite Connect or
from a CSV file for offline analysis.

Use 'butterfly help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/nifty-butterfly)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAuthCommands(rootCmd, app)
	addChainCommands(rootCmd, app)
	addScanCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)

	return rootCmd
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("butterfly v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir()})
			} else {
				output.Println(app.Config.Dir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	scanner := cfg.ScannerButterflyConfig()

	output.Bold("Scanner Configuration")
	output.Printf("  Gaps:             %v\n", scanner.Gaps)
	output.Printf("  Max Value %%:      %.1f%%\n", scanner.MaxValuePercent)
	output.Printf("  Trade Value %%:    %.1f%%\n", scanner.TradeValuePercent)
	output.Printf("  Near ATM Bands:   %d\n", scanner.NearATMBands)
	output.Printf("  Good Gap Max:     %d\n", scanner.GoodGapMax)
	output.Printf("  Max Trades:       %d\n", scanner.MaxTrades)
	output.Println()

	output.Bold("Feed Configuration")
	output.Printf("  Symbol:           %s\n", cfg.Feed.Symbol)
	output.Printf("  Exchange:         %s\n", cfg.Feed.Exchange)
	output.Printf("  Refresh Interval: %s\n", cfg.Feed.RefreshInterval)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:            %s\n", cfg.Logging.Level)
	output.Printf("  Console:          %v\n", cfg.Logging.Console)
	output.Printf("  File:             %v\n", cfg.Logging.File)

	return nil
}
