package feed

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"nifty-butterfly/internal/chain"
	"nifty-butterfly/internal/errors"
	"nifty-butterfly/internal/models"
)

// JSONSource serves a chain snapshot from a JSON file holding an array of
// contract objects. Field names are resolved through the alias table, so
// dumps straight from NSE-style endpoints load without renaming.
type JSONSource struct {
	path   string
	symbol string
	spot   float64
}

// NewJSONSource creates a JSON-backed source. spot overrides any spot price
// embedded in the file; pass 0 to use the file's sentinel row.
func NewJSONSource(path, symbol string, spot float64) *JSONSource {
	if symbol == "" {
		symbol = "NIFTY"
	}
	return &JSONSource{path: path, symbol: symbol, spot: spot}
}

// Name implements Source.
func (j *JSONSource) Name() string {
	return "json"
}

// GetSnapshot implements Source.
func (j *JSONSource) GetSnapshot(ctx context.Context) (*models.ChainSnapshot, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, errors.NewFeedError(j.Name(), "reading chain file", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		// Some dumps wrap the array in a data field
		var wrapped struct {
			Data []map[string]interface{} `json:"data"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil || wrapped.Data == nil {
			return nil, errors.NewFeedError(j.Name(), "parsing chain file", err)
		}
		records = wrapped.Data
	}

	contracts := chain.DecodeContracts(records)
	if len(contracts) == 0 {
		return nil, errors.NewDataError("chain", j.symbol, "no contracts in file", errors.ErrDataNotFound)
	}

	spot := j.spot
	if spot == 0 {
		for _, c := range contracts {
			if c.StrikePrice == models.UnderlyingStrike && c.LTP != nil {
				spot = *c.LTP
				break
			}
		}
	}

	return &models.ChainSnapshot{
		Symbol:    j.symbol,
		Contracts: contracts,
		SpotPrice: spot,
		FetchedAt: time.Now(),
	}, nil
}

// NewFileSource picks the file source matching the path's extension:
// JSONSource for .json, CSVSource otherwise.
func NewFileSource(path, symbol string, spot float64) Source {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return NewJSONSource(path, symbol, spot)
	}
	return NewCSVSource(path, symbol, spot)
}

var _ Source = (*JSONSource)(nil)
