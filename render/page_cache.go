package render

import (
	"context"
	"time"

	"github.com/pitabwire/whitelabel/cache"
)

const pageKeyPrefix = "page:"

// CachedPage is one rendered page variant held in the cache.
type CachedPage struct {
	Body       string    `json:"body"`
	Locale     string    `json:"locale"`
	RenderedAt time.Time `json:"rendered_at"`
}

type pageKey struct {
	Path   string
	Locale string
}

// PageCache stores rendered pages keyed by path and locale. It is the
// invalidation target for the mutation notifier: invalidating a path
// drops every locale variant of it.
type PageCache struct {
	raw   cache.RawCache
	typed cache.Cache[pageKey, CachedPage]
}

// NewPageCache wraps a raw cache with the page key scheme.
func NewPageCache(raw cache.RawCache) *PageCache {
	return &PageCache{
		raw: raw,
		typed: cache.NewGenericCache[pageKey, CachedPage](raw, func(k pageKey) string {
			return pageKeyPrefix + k.Path + ":" + k.Locale
		}),
	}
}

func (pc *PageCache) Get(ctx context.Context, path, locale string) (CachedPage, bool, error) {
	return pc.typed.Get(ctx, pageKey{Path: path, Locale: locale})
}

func (pc *PageCache) Set(ctx context.Context, path, locale string, page CachedPage, ttl time.Duration) error {
	return pc.typed.Set(ctx, pageKey{Path: path, Locale: locale}, page, ttl)
}

// Invalidate drops every locale variant cached for the path. It
// implements the notifier's Invalidator contract and is idempotent:
// invalidating an uncached path is a no-op.
func (pc *PageCache) Invalidate(ctx context.Context, path string) error {
	_, err := pc.raw.DeletePrefix(ctx, pageKeyPrefix+path+":")
	return err
}

// Close releases the underlying cache.
func (pc *PageCache) Close() error {
	return pc.raw.Close()
}
