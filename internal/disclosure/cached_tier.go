package disclosure

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/scam-catalog/internal/metrics"
	"github.com/diewo77/scam-catalog/internal/models"
	"golang.org/x/sync/singleflight"
)

// CachedTierResolver wraps a TierResolver with TTL-based caching.
// Concurrent misses for the same field share one lookup.
type CachedTierResolver struct {
	inner   TierResolver
	cache   map[FieldKey]*cacheEntry
	mu      sync.RWMutex
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	now     func() time.Time
}

type cacheEntry struct {
	tier      models.AccessTier
	expiresAt time.Time
}

// NewCachedTierResolver wraps a resolver with caching.
// ttl is how long tiers are cached before re-fetching. m may be nil.
func NewCachedTierResolver(inner TierResolver, ttl time.Duration, m *metrics.Metrics) *CachedTierResolver {
	return &CachedTierResolver{
		inner:   inner,
		cache:   make(map[FieldKey]*cacheEntry),
		ttl:     ttl,
		metrics: m,
		now:     time.Now,
	}
}

// Tier returns the tier for key, using the cache if available.
// Errors are not cached.
func (r *CachedTierResolver) Tier(ctx context.Context, key FieldKey) (models.AccessTier, error) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()

	if ok && r.now().Before(entry.expiresAt) {
		r.metrics.IncrementTierCache(true)
		return entry.tier, nil
	}
	r.metrics.IncrementTierCache(false)

	v, err, _ := r.group.Do(key.String(), func() (interface{}, error) {
		tier, err := r.inner.Tier(ctx, key)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = &cacheEntry{tier: tier, expiresAt: r.now().Add(r.ttl)}
		r.mu.Unlock()
		return tier, nil
	})
	if err != nil {
		return "", err
	}
	return v.(models.AccessTier), nil
}

// Invalidate removes one field from the cache.
// Call this when the field's policy row changes.
func (r *CachedTierResolver) Invalidate(key FieldKey) {
	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (r *CachedTierResolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[FieldKey]*cacheEntry)
	r.mu.Unlock()
}
