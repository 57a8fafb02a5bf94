package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nifty-butterfly/internal/store"
)

func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Review past scans and alerts",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalAlertsCmd(app))

	rootCmd.AddCommand(cmd)
}

func requireStore(app *App) error {
	if app.Store == nil {
		return fmt.Errorf("store unavailable: journal is disabled")
	}
	return nil
}

func journalFilter(cmd *cobra.Command) store.ScanFilter {
	symbol, _ := cmd.Flags().GetString("symbol")
	limit, _ := cmd.Flags().GetInt("limit")
	days, _ := cmd.Flags().GetInt("days")

	filter := store.ScanFilter{Symbol: symbol, Limit: limit}
	if days > 0 {
		filter.From = time.Now().AddDate(0, 0, -days)
	}
	return filter
}

func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "", "filter by underlying symbol")
	cmd.Flags().Int("limit", 20, "maximum entries to show")
	cmd.Flags().Int("days", 0, "only entries from the last N days")
}

func newJournalListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled scans",
		Example: `  butterfly journal list
  butterfly journal list --symbol NIFTY --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				output.Error("%v", err)
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			scans, err := app.Store.GetScans(ctx, journalFilter(cmd))
			if err != nil {
				output.Error("Failed to load journal: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(scans)
			}

			if len(scans) == 0 {
				output.Dim("No journaled scans")
				return nil
			}

			table := NewTable(output, "ID", "Time", "Symbol", "Spot", "Strategies", "Stale")
			for _, s := range scans {
				stale := ""
				if s.Stale {
					stale = output.Yellow("stale")
				}
				table.AddRow(
					TruncateString(s.ID, 24),
					FormatDateTime(s.CreatedAt),
					s.Symbol,
					FormatPrice(s.SpotPrice),
					fmt.Sprintf("%d", len(s.Strategies)),
					stale,
				)
			}
			table.Render()
			return nil
		},
	}

	addJournalFlags(cmd)
	return cmd
}

func newJournalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show one journaled scan in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				output.Error("%v", err)
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			scan, err := app.Store.GetScan(ctx, args[0])
			if err != nil {
				output.Error("Failed to load scan: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(scan)
			}

			output.Bold("Scan %s", scan.ID)
			output.Printf("  Time:       %s\n", FormatDateTime(scan.CreatedAt))
			output.Printf("  Symbol:     %s\n", scan.Symbol)
			output.Printf("  Spot:       %s\n", FormatPrice(scan.SpotPrice))
			output.Printf("  Max Value:  %.1f%%\n", scan.MaxValuePercent)
			if scan.Stale {
				output.Warning("  Data was stale at scan time")
			}
			output.Println()
			renderStrategies(output, scan.Strategies)
			return nil
		},
	}
}

func newJournalAlertsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts raised by past scans",
		Example: `  butterfly journal alerts
  butterfly journal alerts --days 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				output.Error("%v", err)
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			alerts, err := app.Store.GetAlerts(ctx, journalFilter(cmd))
			if err != nil {
				output.Error("Failed to load alerts: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(alerts)
			}

			if len(alerts) == 0 {
				output.Dim("No alerts")
				return nil
			}

			table := NewTable(output, "Time", "Symbol", "Type", "Strategy", "Strikes", "Value")
			for _, a := range alerts {
				table.AddRow(
					FormatDateTime(a.CreatedAt),
					a.Symbol,
					output.AlertTag(a.Type),
					a.StrategyType,
					a.StrikeCombo,
					fmt.Sprintf("%.1f%%", a.ValuePercent),
				)
			}
			table.Render()
			return nil
		},
	}

	addJournalFlags(cmd)
	return cmd
}
