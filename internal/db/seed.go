package db

import (
	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm"
)

// GovernedFields lists every field under disclosure control with its default
// tier. Contact details, custom field values and images are premium; the
// rest is public.
var GovernedFields = []models.FieldAccessPolicy{
	{EntityType: "case", FieldName: "description", Tier: models.TierPublic},
	{EntityType: "case", FieldName: "status", Tier: models.TierPublic},
	{EntityType: "identifier", FieldName: "name", Tier: models.TierPublic},
	{EntityType: "identifier", FieldName: "phone", Tier: models.TierPremium},
	{EntityType: "identifier", FieldName: "email", Tier: models.TierPremium},
	{EntityType: "identifier", FieldName: "website", Tier: models.TierPremium},
	{EntityType: "identifier", FieldName: "payment_account", Tier: models.TierPremium},
	{EntityType: "custom_field", FieldName: "label", Tier: models.TierPublic},
	{EntityType: "custom_field", FieldName: "value", Tier: models.TierPremium},
	{EntityType: "image", FieldName: "image", Tier: models.TierPremium},
}

// Seed creates the FieldAccessPolicy row of every governed field. Existing
// rows keep whatever tier an operator set.
func Seed(db *gorm.DB) error {
	for _, p := range GovernedFields {
		policy := models.FieldAccessPolicy{
			EntityType: p.EntityType,
			FieldName:  p.FieldName,
		}
		// Use FirstOrCreate to avoid duplicates
		result := db.Where("entity_type = ? AND field_name = ?", p.EntityType, p.FieldName).
			Attrs(models.FieldAccessPolicy{Tier: p.Tier}).
			FirstOrCreate(&policy)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}
