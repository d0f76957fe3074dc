package models

import (
	"time"

	"github.com/diewo77/scam-catalog/internal/matching"
	"gorm.io/gorm"
)

// Identifier is one fact attached to a case: a name, phone number, email,
// website or payment account.
type Identifier struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	CaseID    uint          `gorm:"index;not null" json:"case_id"`
	Kind      matching.Kind `gorm:"size:20;not null;index:idx_identifier_match,priority:1" json:"kind"`
	Value     string        `gorm:"size:255" json:"value"`
	// MatchKey is the normalized form of Value used for exact linkage lookups.
	// Empty when Value is blank.
	MatchKey string `gorm:"size:255;index:idx_identifier_match,priority:2" json:"-"`
}

// BeforeSave keeps MatchKey in step with Value on every create and update.
func (i *Identifier) BeforeSave(_ *gorm.DB) error {
	i.RefreshKey()
	return nil
}

// RefreshKey recomputes MatchKey from the current Value.
func (i *Identifier) RefreshKey() {
	key, _ := matching.Normalize(i.Kind, i.Value)
	i.MatchKey = key
}

// Links reports whether saving this identifier should trigger linkage.
func (i *Identifier) Links() bool {
	return i.Kind.Links()
}
