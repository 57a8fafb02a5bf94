package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nifty-butterfly/internal/logging"
	"nifty-butterfly/internal/models"
)

func addScanCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
}

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Rank butterfly combinations into a shortlist",
		Long: `Scans call and put butterflies across every strike and gap, filters out
combinations that fail the pricing sanity checks, and ranks the rest by
value percentage. Results are journaled when the store is available.`,
		Example: `  butterfly scan
  butterfly scan --max-value 10
  butterfly scan --file chain.csv --spot 24070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			snap, err := snapshotForCmd(ctx, cmd, app)
			if err != nil {
				output.Error("Failed to fetch chain: %v", err)
				return err
			}

			maxValue, _ := cmd.Flags().GetFloat64("max-value")
			if maxValue <= 0 {
				maxValue = app.Scanner.Config().MaxValuePercent
			}

			strategies := app.Scanner.FindBestStrategies(snap.Contracts, snap.SpotPrice, maxValue)

			noSave, _ := cmd.Flags().GetBool("no-save")
			if !noSave {
				journalScan(ctx, app, snap, maxValue, strategies)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     snap.Symbol,
					"spot":       snap.SpotPrice,
					"stale":      snap.Stale,
					"strategies": strategies,
				})
			}

			renderScanHeader(output, snap)
			renderStrategies(output, strategies)
			return nil
		},
	}

	cmd.Flags().Float64("max-value", 0, "value percent ceiling (default from config)")
	cmd.Flags().Bool("no-save", false, "skip journaling the scan")
	addSnapshotFlags(cmd)
	return cmd
}

func newTradesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Show the tightest tradable butterflies",
		Long: `Narrows the scan shortlist to near-ATM, good-gap combinations under the
trade value ceiling. This is the list worth acting on.`,
		Example: `  butterfly trades
  butterfly trades --file chain.csv --spot 24070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			snap, err := snapshotForCmd(ctx, cmd, app)
			if err != nil {
				output.Error("Failed to fetch chain: %v", err)
				return err
			}

			trades := app.Scanner.FindBestTrades(snap.Contracts, snap.SpotPrice)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol": snap.Symbol,
					"spot":   snap.SpotPrice,
					"stale":  snap.Stale,
					"trades": trades,
				})
			}

			renderScanHeader(output, snap)
			if len(trades) == 0 {
				output.Dim("No tradable butterflies right now")
				return nil
			}
			renderStrategies(output, trades)
			return nil
		},
	}

	addSnapshotFlags(cmd)
	return cmd
}

func journalScan(ctx context.Context, app *App, snap *models.ChainSnapshot, maxValue float64, strategies []models.ButterflyStrategy) {
	if app.Store == nil {
		return
	}

	record := &models.ScanRecord{
		Symbol:          snap.Symbol,
		SpotPrice:       snap.SpotPrice,
		MaxValuePercent: maxValue,
		Stale:           snap.Stale,
		Strategies:      strategies,
	}
	if err := app.Store.SaveScan(ctx, record); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to journal scan")
		return
	}

	alerts := 0
	for _, s := range strategies {
		if s.AlertType != models.AlertNone && s.AlertType != "" {
			alerts++
		}
	}
	logging.LogScan(app.Logger, snap.Symbol, snap.SpotPrice, len(strategies), alerts)
}

func renderScanHeader(output *Output, snap *models.ChainSnapshot) {
	output.Bold("%s Butterfly Scan  Spot: %s  %s", snap.Symbol,
		FormatPrice(snap.SpotPrice), FormatTime(snap.FetchedAt))
	if snap.Stale {
		output.Warning("⚠ serving stale data: last refresh failed")
	}
}

func renderStrategies(output *Output, strategies []models.ButterflyStrategy) {
	if len(strategies) == 0 {
		output.Dim("No eligible butterflies")
		return
	}

	table := NewTable(output, "Type", "Strikes", "Gap", "Rate", "Value", "Dist", "Recommendation", "Alert")
	for _, s := range strategies {
		table.AddRow(
			strategyTypeLabel(output, s.Type),
			s.StrikeCombo,
			fmt.Sprintf("%d", s.Gap),
			FormatPrice(s.ButterflyRate),
			fmt.Sprintf("%.1f%%", s.ValuePercent),
			fmt.Sprintf("%d", s.DistanceFromATM),
			output.Recommendation(s.Recommendation),
			output.AlertTag(s.AlertType),
		)
	}
	table.Render()
}

func strategyTypeLabel(output *Output, typ string) string {
	switch typ {
	case "CALL_BUTTERFLY":
		return output.Green("CALL")
	case "PUT_BUTTERFLY":
		return output.Red("PUT")
	default:
		return typ
	}
}
