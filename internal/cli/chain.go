package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nifty-butterfly/internal/butterfly"
	"nifty-butterfly/internal/errors"
	"nifty-butterfly/internal/feed"
	"nifty-butterfly/internal/logging"
	"nifty-butterfly/internal/models"
)

func addChainCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newMultiCmd(app))
}

// snapshotForCmd resolves the chain snapshot for a command run: a CSV file
// when --file is given, the live source otherwise.
func snapshotForCmd(ctx context.Context, cmd *cobra.Command, app *App) (*models.ChainSnapshot, error) {
	file, _ := cmd.Flags().GetString("file")
	spot, _ := cmd.Flags().GetFloat64("spot")

	source := app.Source
	if file != "" {
		source = feed.NewFileSource(file, app.Config.Feed.Symbol, spot)
	}
	if source == nil {
		return nil, errors.Wrap(errors.ErrNotAuthenticated,
			"no data source: configure Kite credentials or pass --file")
	}

	start := time.Now()
	snap, err := source.GetSnapshot(ctx)
	logging.LogFetch(app.Logger, source.Name(), app.Config.Feed.Symbol,
		snapshotSize(snap), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if spot > 0 {
		snap.SpotPrice = spot
	}
	return snap, nil
}

func snapshotSize(snap *models.ChainSnapshot) int {
	if snap == nil {
		return 0
	}
	return len(snap.Contracts)
}

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Show the butterfly rate matrix for one side",
		Long: `Builds the per-strike butterfly rate matrix for calls or puts.

Each row shows the strike, its reference premium, and the 1-2-1 butterfly
rate at every configured gap. The at-the-money strike is marked. Put rows
print in descending strike order so the ATM region stays near the top.`,
		Example: `  butterfly chain
  butterfly chain --side put
  butterfly chain --gaps 50,100
  butterfly chain --file chain.csv --spot 24070
  butterfly chain --ratio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			side, err := sideFlag(cmd)
			if err != nil {
				return err
			}

			snap, err := snapshotForCmd(ctx, cmd, app)
			if err != nil {
				output.Error("Failed to fetch chain: %v", err)
				return err
			}

			ratio, _ := cmd.Flags().GetBool("ratio")
			gapsOverride, _ := cmd.Flags().GetIntSlice("gaps")

			var rows []models.ButterflyRow
			switch {
			case ratio:
				rows = app.Scanner.BuildRatioChain(snap.Contracts, snap.SpotPrice, side)
			case len(gapsOverride) > 0:
				rows = butterfly.BuildChain(snap.Contracts, snap.SpotPrice, side, gapsOverride)
			default:
				rows = app.Scanner.BuildChain(snap.Contracts, snap.SpotPrice, side)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol": snap.Symbol,
					"spot":   snap.SpotPrice,
					"side":   side,
					"stale":  snap.Stale,
					"rows":   rows,
				})
			}

			renderChainHeader(output, snap, side)
			renderChainTable(output, rows, chainGaps(app, ratio, gapsOverride))
			return nil
		},
	}

	cmd.Flags().String("side", "call", "option side: call or put")
	cmd.Flags().Bool("ratio", false, "use the ratio butterfly variant")
	cmd.Flags().IntSlice("gaps", nil, "override the configured strike gaps, e.g. --gaps 50,100")
	addSnapshotFlags(cmd)
	return cmd
}

func newMultiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multi",
		Short: "Show butterfly rate matrices for both sides",
		Example: `  butterfly multi
  butterfly multi --file chain.csv --spot 24070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			snap, err := snapshotForCmd(ctx, cmd, app)
			if err != nil {
				output.Error("Failed to fetch chain: %v", err)
				return err
			}

			calls := app.Scanner.BuildChain(snap.Contracts, snap.SpotPrice, models.Call)
			puts := app.Scanner.BuildChain(snap.Contracts, snap.SpotPrice, models.Put)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol": snap.Symbol,
					"spot":   snap.SpotPrice,
					"stale":  snap.Stale,
					"calls":  calls,
					"puts":   puts,
				})
			}

			gaps := chainGaps(app, false, nil)
			renderChainHeader(output, snap, models.Call)
			renderChainTable(output, calls, gaps)
			output.Println()
			renderChainHeader(output, snap, models.Put)
			renderChainTable(output, puts, gaps)
			return nil
		},
	}

	addSnapshotFlags(cmd)
	return cmd
}

func addSnapshotFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "read the chain from a CSV or JSON file instead of the live source")
	cmd.Flags().Float64("spot", 0, "override the spot price")
}

func sideFlag(cmd *cobra.Command) (models.OptionSide, error) {
	raw, _ := cmd.Flags().GetString("side")
	switch raw {
	case "call", "CALL", "ce", "CE":
		return models.Call, nil
	case "put", "PUT", "pe", "PE":
		return models.Put, nil
	default:
		return "", fmt.Errorf("invalid side %q: use call or put", raw)
	}
}

func renderChainHeader(output *Output, snap *models.ChainSnapshot, side models.OptionSide) {
	label := "CALL"
	if side == models.Put {
		label = "PUT"
	}
	output.Bold("%s %s Butterflies  Spot: %s  %s", snap.Symbol, label,
		FormatPrice(snap.SpotPrice), FormatTime(snap.FetchedAt))
	if snap.Stale {
		output.Warning("⚠ serving stale data: last refresh failed")
	}
}

// chainGaps resolves the gap columns to render: an explicit override wins,
// the ratio table applies to ratio matrices, the configured gaps otherwise.
func chainGaps(app *App, ratio bool, override []int) []int {
	if len(override) > 0 && !ratio {
		return override
	}
	if ratio {
		var gaps []int
		for _, leg := range app.Scanner.Config().RatioLegs {
			gaps = append(gaps, leg.Gap)
		}
		return gaps
	}
	return app.Scanner.Config().Gaps
}

func renderChainTable(output *Output, rows []models.ButterflyRow, gaps []int) {
	if len(rows) == 0 {
		output.Dim("No strikes available")
		return
	}

	headers := []string{"Strike", "Premium", "Bid", "Ask"}
	for _, gap := range gaps {
		headers = append(headers, fmt.Sprintf("G%d", gap))
	}

	table := NewTable(output, headers...)
	for _, row := range rows {
		strike := FormatStrike(row.Strike)
		if row.IsATM {
			strike = output.Cyan(strike + " *")
		}
		cells := []string{
			strike,
			FormatPrice(row.Premium),
			FormatPrice(row.Bid),
			FormatPrice(row.Ask),
		}
		for _, gap := range gaps {
			entry, ok := row.Gaps[gap]
			if !ok {
				cells = append(cells, output.DimText("-"))
				continue
			}
			cell := FormatRate(entry.Rate, entry.Value)
			switch butterfly.GetRecommendation(entry.Value) {
			case models.RecommendEntry:
				cell = output.Green(cell)
			case models.RecommendAvoid:
				cell = output.Red(cell)
			}
			cells = append(cells, cell)
		}
		table.AddRow(cells...)
	}
	table.Render()
	output.Dim("* at-the-money strike")
}
