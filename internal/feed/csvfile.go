package feed

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"nifty-butterfly/internal/errors"
	"nifty-butterfly/internal/models"
)

// CSVSource serves a chain snapshot from a CSV file. Useful for replaying
// captured chains and for offline analysis.
//
// The file carries one contract per row under the same headers the raw
// contract type declares. A row with the underlying sentinel strike may carry
// the spot price in its ltp column.
type CSVSource struct {
	path   string
	symbol string
	spot   float64 // overrides the sentinel row when non-zero
}

// NewCSVSource creates a CSV-backed source. spot overrides any spot price
// embedded in the file; pass 0 to use the file's sentinel row.
func NewCSVSource(path, symbol string, spot float64) *CSVSource {
	if symbol == "" {
		symbol = "NIFTY"
	}
	return &CSVSource{path: path, symbol: symbol, spot: spot}
}

// Name implements Source.
func (c *CSVSource) Name() string {
	return "csv"
}

// GetSnapshot implements Source. The file is re-read on every call so a
// refreshed file shows up on the next poll.
func (c *CSVSource) GetSnapshot(ctx context.Context) (*models.ChainSnapshot, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, errors.NewFeedError(c.Name(), "opening chain file", err)
	}
	defer f.Close()

	var rows []*models.RawContract
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewFeedError(c.Name(), "parsing chain file", err)
	}

	contracts := make([]models.RawContract, 0, len(rows))
	spot := c.spot
	for _, row := range rows {
		if row == nil {
			continue
		}
		if spot == 0 && row.StrikePrice == models.UnderlyingStrike && row.LTP != nil {
			spot = *row.LTP
		}
		contracts = append(contracts, *row)
	}

	if len(contracts) == 0 {
		return nil, errors.NewDataError("chain", c.symbol, "no contracts in file", errors.ErrDataNotFound)
	}

	return &models.ChainSnapshot{
		Symbol:    c.symbol,
		Contracts: contracts,
		SpotPrice: spot,
		FetchedAt: time.Now(),
	}, nil
}

var _ Source = (*CSVSource)(nil)
