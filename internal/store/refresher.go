package store

// refresher.go keeps a table source in step with its backing store.
//
// The host performs the initial load with RefreshOnce; Run then reloads the
// full record set every interval, replacing the source contents on success. A failed load is
// logged and the previous records stay visible; the refresher never stops
// the application.

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/structtable/internal/table"
)

// Loader returns the complete current record set.
type Loader[R any] interface {
	Load(ctx context.Context) ([]R, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc[R any] func(ctx context.Context) ([]R, error)

func (f LoaderFunc[R]) Load(ctx context.Context) ([]R, error) { return f(ctx) }

// Refresher periodically reloads records into a table source.
type Refresher[R any] struct {
	name     string
	loader   Loader[R]
	src      *table.Source[R]
	interval time.Duration

	loads    atomic.Int64
	failures atomic.Int64
}

// NewRefresher returns a refresher for the table called name. An interval
// of zero or less disables periodic reloads.
func NewRefresher[R any](name string, loader Loader[R], src *table.Source[R], interval time.Duration) *Refresher[R] {
	return &Refresher[R]{
		name:     name,
		loader:   loader,
		src:      src,
		interval: interval,
	}
}

// Run reloads every interval until ctx is cancelled. The first reload
// happens one interval after Run starts.
func (r *Refresher[R]) Run(ctx context.Context) {
	logger := slog.With("table", r.name)
	if r.interval <= 0 {
		logger.Info("refresher disabled", "reason", "no interval")
		return
	}
	logger.Info("refresher started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("refresher stopped")
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce performs one load and, on success, replaces the source records.
func (r *Refresher[R]) RefreshOnce(ctx context.Context) error {
	start := time.Now()
	records, err := r.loader.Load(ctx)
	if err != nil {
		r.failures.Add(1)
		slog.Error("refresh failed", "table", r.name, "error", err)
		return err
	}

	r.src.Set(records)
	r.loads.Add(1)

	slog.Debug("refresh completed",
		"table", r.name,
		"rows", len(records),
		"generation", r.src.Generation(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Stats returns the number of successful and failed loads so far.
func (r *Refresher[R]) Stats() (loads, failures int64) {
	return r.loads.Load(), r.failures.Load()
}
