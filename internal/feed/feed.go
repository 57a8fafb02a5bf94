// Package feed acquires option-chain snapshots from upstream market-data
// sources. Sources deliver raw contract rows; all normalization and analysis
// happens downstream.
package feed

import (
	"context"

	"nifty-butterfly/internal/models"
)

// Source delivers option-chain snapshots for an underlying.
type Source interface {
	// GetSnapshot returns the current chain snapshot. Implementations must
	// return an atomically consistent view: spot price and contracts from
	// the same fetch.
	GetSnapshot(ctx context.Context) (*models.ChainSnapshot, error)

	// Name identifies the source in logs and errors.
	Name() string
}
