package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nifty-butterfly/internal/errors"
	"nifty-butterfly/internal/models"
	"nifty-butterfly/pkg/utils"
)

// DefaultPollInterval is the cadence at which the poller refreshes the chain.
const DefaultPollInterval = 5 * time.Second

// Poller refreshes chain snapshots from a source on a fixed cadence and
// serves the latest one. When a refresh fails the previous snapshot keeps
// being served with its stale flag set, so consumers always see a complete
// chain.
type Poller struct {
	source   Source
	interval time.Duration
	retry    utils.RetryConfig
	logger   zerolog.Logger
	onUpdate func(*models.ChainSnapshot)

	mu   sync.RWMutex
	last *models.ChainSnapshot
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the poll cadence.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger attaches a logger to the poller.
func WithLogger(logger zerolog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithOnUpdate registers a callback invoked after every successful refresh.
// The callback receives a copy and must not be long-running.
func WithOnUpdate(fn func(*models.ChainSnapshot)) PollerOption {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// NewPoller creates a poller over the given source.
func NewPoller(source Source, opts ...PollerOption) *Poller {
	p := &Poller{
		source:   source,
		interval: DefaultPollInterval,
		retry:    utils.RetryConfig{MaxAttempts: 2, InitialDelay: 200 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls the source until the context is cancelled. The first fetch
// happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	start := time.Now()
	snap, err := utils.RetryWithResult(ctx, p.retry, func() (*models.ChainSnapshot, error) {
		return p.source.GetSnapshot(ctx)
	})
	if err != nil {
		p.logger.Warn().
			Str("source", p.source.Name()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("chain refresh failed, serving stale snapshot")

		p.mu.Lock()
		if p.last != nil {
			p.last.Stale = true
		}
		p.mu.Unlock()
		return
	}

	p.logger.Debug().
		Str("source", p.source.Name()).
		Str("symbol", snap.Symbol).
		Int("contracts", len(snap.Contracts)).
		Dur("duration", time.Since(start)).
		Msg("chain refreshed")

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(p.snapshotCopy())
	}
}

// Snapshot returns the latest snapshot. Returns ErrNoSnapshot before the
// first successful refresh.
func (p *Poller) Snapshot() (*models.ChainSnapshot, error) {
	snap := p.snapshotCopy()
	if snap == nil {
		return nil, errors.ErrNoSnapshot
	}
	return snap, nil
}

func (p *Poller) snapshotCopy() *models.ChainSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.last == nil {
		return nil
	}
	cp := *p.last
	cp.Contracts = make([]models.RawContract, len(p.last.Contracts))
	copy(cp.Contracts, p.last.Contracts)
	return &cp
}
