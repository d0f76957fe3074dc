package disclosure

import (
	"context"

	"github.com/diewo77/scam-catalog/internal/models"
)

// FieldKey names one governed field, e.g. {"identifier", "phone"}.
type FieldKey struct {
	EntityType string
	FieldName  string
}

// String returns the key in "entity.field" format.
func (k FieldKey) String() string {
	return k.EntityType + "." + k.FieldName
}

// TierResolver resolves the disclosure tier of a field.
// A field without a policy row must resolve to TierPublic with a nil error.
type TierResolver interface {
	Tier(ctx context.Context, key FieldKey) (models.AccessTier, error)
}

// TierSource reads stored policy rows.
type TierSource interface {
	FieldTier(ctx context.Context, entityType, fieldName string) (models.AccessTier, bool, error)
}

// StoreTierResolver resolves tiers from stored FieldAccessPolicy rows.
type StoreTierResolver struct {
	source TierSource
}

// NewStoreTierResolver creates a resolver backed by source.
func NewStoreTierResolver(source TierSource) *StoreTierResolver {
	return &StoreTierResolver{source: source}
}

// Tier returns the stored tier, or TierPublic when the field has no row or
// holds an unknown value.
func (r *StoreTierResolver) Tier(ctx context.Context, key FieldKey) (models.AccessTier, error) {
	tier, found, err := r.source.FieldTier(ctx, key.EntityType, key.FieldName)
	if err != nil {
		return "", err
	}
	if !found || !tier.Valid() {
		return models.TierPublic, nil
	}
	return tier, nil
}

// StaticTierResolver is an in-memory resolver for tests and fixed setups.
type StaticTierResolver struct {
	tiers map[FieldKey]models.AccessTier
}

// NewStaticTierResolver creates an empty resolver; every field is public.
func NewStaticTierResolver() *StaticTierResolver {
	return &StaticTierResolver{tiers: make(map[FieldKey]models.AccessTier)}
}

// Set assigns a tier to a field.
func (r *StaticTierResolver) Set(key FieldKey, tier models.AccessTier) {
	r.tiers[key] = tier
}

// Tier returns the assigned tier or TierPublic.
func (r *StaticTierResolver) Tier(_ context.Context, key FieldKey) (models.AccessTier, error) {
	if tier, ok := r.tiers[key]; ok {
		return tier, nil
	}
	return models.TierPublic, nil
}
