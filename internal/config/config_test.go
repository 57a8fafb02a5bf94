package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRecordsConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KITE_API_KEY", "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ConfigDir != dir {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, dir)
	}
	if got := cfg.Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
}

func TestLoadCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("config.toml template not created: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "credentials.toml"))
	if err != nil {
		t.Fatalf("credentials.toml template not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials.toml mode = %o, want 0600", perm)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BUTTERFLY_SYMBOL", "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Feed.Symbol != "NIFTY" {
		t.Errorf("Feed.Symbol = %q, want NIFTY", cfg.Feed.Symbol)
	}
	if cfg.Feed.RefreshInterval != 5*time.Second {
		t.Errorf("Feed.RefreshInterval = %v, want 5s", cfg.Feed.RefreshInterval)
	}
	if cfg.Scanner.MaxValuePercent != 20 {
		t.Errorf("Scanner.MaxValuePercent = %v, want 20", cfg.Scanner.MaxValuePercent)
	}
}

func TestDirFallsBackToDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.Dir(); got != DefaultConfigDir() {
		t.Errorf("Dir() = %q, want default config dir", got)
	}
}
