// Package store holds the demo data layer: fixed in-memory records
// behind repository interfaces, with simulated lookup latency so pages
// and API calls behave like they sit on a real backend.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
)

// simulateLatency blocks for the configured duration or until the
// context is cancelled, whichever comes first.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
