package models

import "time"

// AccessTier classifies who may see a governed field.
type AccessTier string

const (
	TierPublic  AccessTier = "public"
	TierPremium AccessTier = "premium"
)

// Valid reports whether t is a known tier.
func (t AccessTier) Valid() bool {
	return t == TierPublic || t == TierPremium
}

// FieldAccessPolicy assigns a disclosure tier to one field of one entity type.
// Format of the key mirrors "entity.field" (e.g. "identifier.phone").
type FieldAccessPolicy struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	EntityType string     `gorm:"size:100;not null;uniqueIndex:idx_field_access,priority:1" json:"entity_type"`
	FieldName  string     `gorm:"size:100;not null;uniqueIndex:idx_field_access,priority:2" json:"field_name"`
	Tier       AccessTier `gorm:"size:10;not null;default:'public'" json:"tier"`
}

// Code returns the policy key in "entity.field" format.
func (p FieldAccessPolicy) Code() string {
	return p.EntityType + "." + p.FieldName
}

// Entitlement records that a user unlocked the premium fields of one case.
type Entitlement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_entitlement_user_case,priority:1" json:"user_id"`
	CaseID      uint      `gorm:"not null;uniqueIndex:idx_entitlement_user_case,priority:2;index" json:"case_id"`
	PurchasedAt time.Time `gorm:"not null" json:"purchased_at"`
}
