// Package store persists scan results for journal review.
package store

import (
	"context"
	"time"

	"nifty-butterfly/internal/models"
)

// ScanFilter narrows journal queries.
type ScanFilter struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

// AlertRecord is one persisted alert raised during a scan.
type AlertRecord struct {
	ID           int64            `json:"id"`
	ScanID       string           `json:"scan_id"`
	Symbol       string           `json:"symbol"`
	Type         models.AlertType `json:"type"`
	StrategyType string           `json:"strategy_type"`
	StrikeCombo  string           `json:"strike_combo"`
	ValuePercent float64          `json:"value_percent"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ScanStore defines the persistence interface for scan journaling.
type ScanStore interface {
	// SaveScan persists a ranking pass and its alerts. A missing ID is
	// assigned before insert.
	SaveScan(ctx context.Context, record *models.ScanRecord) error

	// GetScans returns journal entries newest first.
	GetScans(ctx context.Context, filter ScanFilter) ([]models.ScanRecord, error)

	// GetScan returns one journal entry by ID.
	GetScan(ctx context.Context, id string) (*models.ScanRecord, error)

	// GetAlerts returns alerts newest first.
	GetAlerts(ctx context.Context, filter ScanFilter) ([]AlertRecord, error)

	// Close releases the underlying resources.
	Close() error
}
