package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nifty-butterfly/internal/feed"
	"nifty-butterfly/pkg/utils"
)

func addAuthCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newLoginCmd(app))
	rootCmd.AddCommand(newLogoutCmd(app))
	rootCmd.AddCommand(newAuthStatusCmd(app))
}

func kiteSource(app *App) (*feed.KiteSource, error) {
	if app.Source == nil {
		return nil, fmt.Errorf("Kite credentials not configured: add them to credentials.toml")
	}
	kite, ok := app.Source.(*feed.KiteSource)
	if !ok {
		return nil, fmt.Errorf("login only applies to the Kite source")
	}
	return kite, nil
}

func newLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Zerodha Kite Connect",
		Long: `Authenticates with Zerodha Kite Connect.

If password and TOTP secret are configured in credentials.toml, this will
log in automatically without a browser. Otherwise it prints the login URL;
complete the flow in a browser and pass the request token back with
--token.`,
		Example: `  butterfly login
  butterfly login --token <request-token>
  butterfly login --browser`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			kite, err := kiteSource(app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if kite.IsAuthenticated() {
				return showAuthStatus(output, kite)
			}

			if token, _ := cmd.Flags().GetString("token"); token != "" {
				if err := kite.CompleteLogin(ctx, token); err != nil {
					output.Error("Login failed: %v", err)
					return err
				}
				output.Success("✓ Login successful")
				return showAuthStatus(output, kite)
			}

			password := app.Config.Credentials.Kite.Password
			totpSecret := app.Config.Credentials.Kite.TOTPSecret
			forceBrowser, _ := cmd.Flags().GetBool("browser")

			if !forceBrowser && password != "" && totpSecret != "" {
				output.Info("Performing auto-login...")
				if err := kite.AutoLogin(ctx, password, totpSecret); err != nil {
					output.Warning("Auto-login failed: %v", err)
					output.Info("Falling back to browser login")
				} else {
					output.Success("✓ Login successful")
					return showAuthStatus(output, kite)
				}
			}

			output.Info("Complete the login in your browser:")
			output.Println()
			output.Println(kite.GetLoginURL())
			output.Println()
			output.Dim("Then run: butterfly login --token <request-token>")
			return nil
		},
	}

	cmd.Flags().String("token", "", "request token from the browser login redirect")
	cmd.Flags().Bool("browser", false, "skip auto-login and print the browser URL")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			kite, err := kiteSource(app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if err := kite.Logout(ctx); err != nil {
				output.Error("Logout failed: %v", err)
				return err
			}
			output.Success("✓ Logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth-status",
		Short: "Check authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			kite, err := kiteSource(app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"authenticated": kite.IsAuthenticated(),
					"market":        utils.GetMarketStatus(),
				})
			}
			return showAuthStatus(output, kite)
		},
	}
}

func showAuthStatus(output *Output, kite *feed.KiteSource) error {
	if kite.IsAuthenticated() {
		output.Success("✓ Authenticated")
	} else {
		output.Warning("Not authenticated. Run: butterfly login")
	}

	output.Printf("Market: %s\n", output.MarketStatus(utils.GetMarketStatus()))
	if utils.IsMarketOpen() {
		output.Dim("Closes in %s", FormatDurationShort(utils.TimeUntilMarketClose()))
	} else {
		output.Dim("Next open: %s", FormatDateTime(utils.GetNextMarketOpen()))
	}
	return nil
}

// FormatDurationShort formats a duration as h/m/s without sub-second noise.
func FormatDurationShort(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
