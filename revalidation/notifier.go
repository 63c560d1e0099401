package revalidation

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"
)

// Invalidator is the path-invalidation primitive the notifier drives.
// Implementations mark one path's cached output stale; they are expected
// to be idempotent and safe to call concurrently.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// NoopInvalidator discards invalidations. Useful in tests and when no
// cache layer is configured.
type NoopInvalidator struct{}

func (*NoopInvalidator) Invalidate(_ context.Context, _ string) error { return nil }

// InvalidatorFunc adapts a function to the Invalidator interface.
type InvalidatorFunc func(ctx context.Context, path string) error

func (f InvalidatorFunc) Invalidate(ctx context.Context, path string) error {
	return f(ctx, path)
}

const defaultWorkerCount = 8

// Notifier fans mutation invalidation sets out to an Invalidator.
// Each path is independent and best-effort: a failing path is logged and
// skipped, never retried and never rolled back.
type Notifier struct {
	invalidator Invalidator
	pool        *ants.Pool

	closeOnce sync.Once
}

// NewNotifier creates a notifier dispatching invalidations on a worker
// pool of the given size.
func NewNotifier(invalidator Invalidator, workers int) (*Notifier, error) {
	if workers <= 0 {
		workers = defaultWorkerCount
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &Notifier{invalidator: invalidator, pool: pool}, nil
}

// NotifyMutation computes the invalidation set for the mutated entity and
// invokes the invalidator once per path. It returns after every path has
// been attempted.
func (n *Notifier) NotifyMutation(ctx context.Context, entityKind, entityID string) {
	paths := PathsFor(entityKind, entityID)

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)

		invalidate := func() {
			defer wg.Done()
			if err := n.invalidator.Invalidate(ctx, path); err != nil {
				util.Log(ctx).WithError(err).
					WithField("path", path).
					WithField("entity_kind", entityKind).
					Warn("could not invalidate path")
			}
		}

		if submitErr := n.pool.Submit(invalidate); submitErr != nil {
			// Pool is saturated or released; invalidation still has to happen.
			invalidate()
		}
	}
	wg.Wait()

	util.Log(ctx).WithField("entity_kind", entityKind).
		WithField("paths", len(paths)).
		Debug("invalidation set processed")
}

// Close releases the worker pool.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		n.pool.Release()
	})
}
