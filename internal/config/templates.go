package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# NIFTY Butterfly Scanner Configuration

[scanner]
# Strike gaps (in points) for the 1-2-1 butterfly matrix
gaps = [50, 100, 150, 200]
# Shortlist inclusion ceiling for value percent
max_value_percent = 20.0
# Tighter ceiling used by the best-trades filter
trade_value_percent = 15.0
# Distance from ATM (in 50-point bands) still counted as near
near_atm_bands = 2
# Widest gap (in points) still counted as good
good_gap_max = 100
# Maximum entries returned by the best-trades filter
max_trades = 8

# Middle-leg multipliers for the ratio butterfly variant
[[scanner.ratio_legs]]
gap = 50
ratio = 1.33

[[scanner.ratio_legs]]
gap = 100
ratio = 1.5

[[scanner.ratio_legs]]
gap = 150
ratio = 1.5

[[scanner.ratio_legs]]
gap = 200
ratio = 2.0

[[scanner.ratio_legs]]
gap = 250
ratio = 2.0

[feed]
# Underlying index symbol
symbol = "NIFTY"
# Exchange for the spot quote: NSE, BSE
exchange = "NSE"
# Poll cadence for chain snapshots (e.g., "5s", "10s")
refresh_interval = "5s"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to console
console = true
# Log to rotating file
file = true
`

const credentialsTemplate = `# NIFTY Butterfly Scanner Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[kite]
api_key = ""
api_secret = ""
user_id = ""
# Optional, enables automatic login
password = ""
totp_secret = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created template config at %s\n", path)
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created template credentials at %s\n", path)
	return nil
}
