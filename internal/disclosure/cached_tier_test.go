package disclosure

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTiers struct {
	inner *StaticTierResolver
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (c *countingTiers) Tier(ctx context.Context, key FieldKey) (models.AccessTier, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return "", c.err
	}
	return c.inner.Tier(ctx, key)
}

func newCounting() *countingTiers {
	inner := NewStaticTierResolver()
	inner.Set(phone, models.TierPremium)
	return &countingTiers{inner: inner}
}

func TestCachedTierResolver_CachesTier(t *testing.T) {
	inner := newCounting()
	cached := NewCachedTierResolver(inner, 5*time.Minute, nil)
	ctx := context.Background()

	tier, err := cached.Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, tier)

	// Change underneath; cached value wins.
	inner.inner.Set(phone, models.TierPublic)
	tier, err = cached.Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, tier)
	assert.EqualValues(t, 1, inner.calls.Load())
}

func TestCachedTierResolver_Expires(t *testing.T) {
	inner := newCounting()
	cached := NewCachedTierResolver(inner, time.Minute, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cached.Tier(ctx, phone)
	inner.inner.Set(phone, models.TierPublic)

	now = now.Add(2 * time.Minute)
	tier, err := cached.Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPublic, tier)
	assert.EqualValues(t, 2, inner.calls.Load())
}

func TestCachedTierResolver_Invalidate(t *testing.T) {
	inner := newCounting()
	cached := NewCachedTierResolver(inner, 5*time.Minute, nil)
	ctx := context.Background()

	_, _ = cached.Tier(ctx, phone)
	_, _ = cached.Tier(ctx, name)
	inner.inner.Set(phone, models.TierPublic)
	inner.inner.Set(name, models.TierPremium)

	cached.Invalidate(phone)
	tier, _ := cached.Tier(ctx, phone)
	assert.Equal(t, models.TierPublic, tier)
	tier, _ = cached.Tier(ctx, name)
	assert.Equal(t, models.TierPublic, tier, "name still cached")

	cached.InvalidateAll()
	tier, _ = cached.Tier(ctx, name)
	assert.Equal(t, models.TierPremium, tier)
}

func TestCachedTierResolver_DoesNotCacheErrors(t *testing.T) {
	inner := newCounting()
	inner.err = errors.New("db down")
	cached := NewCachedTierResolver(inner, 5*time.Minute, nil)
	ctx := context.Background()

	_, err := cached.Tier(ctx, phone)
	require.Error(t, err)

	inner.err = nil
	tier, err := cached.Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, tier)
}

func TestCachedTierResolver_CollapsesConcurrentMisses(t *testing.T) {
	inner := newCounting()
	inner.delay = 50 * time.Millisecond
	cached := NewCachedTierResolver(inner, 5*time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tier, err := cached.Tier(context.Background(), phone)
			assert.NoError(t, err)
			assert.Equal(t, models.TierPremium, tier)
		}()
	}
	wg.Wait()
	assert.Less(t, inner.calls.Load(), int32(10))
}

type tierRows struct {
	tier  models.AccessTier
	found bool
	err   error
}

func (r tierRows) FieldTier(context.Context, string, string) (models.AccessTier, bool, error) {
	return r.tier, r.found, r.err
}

func TestStoreTierResolver(t *testing.T) {
	ctx := context.Background()

	tier, err := NewStoreTierResolver(tierRows{}).Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPublic, tier, "missing row defaults to public")

	tier, err = NewStoreTierResolver(tierRows{tier: "gold", found: true}).Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPublic, tier)

	tier, err = NewStoreTierResolver(tierRows{tier: models.TierPremium, found: true}).Tier(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, tier)

	_, err = NewStoreTierResolver(tierRows{err: errors.New("x")}).Tier(ctx, phone)
	assert.Error(t, err)
}
