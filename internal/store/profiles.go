package store

import (
	"context"

	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm"
)

// CreateProfile inserts a profile and links it to the given cases.
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile, caseIDs []uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		if err := db.Omit("Cases").Create(p).Error; err != nil {
			return translate(err, "create profile")
		}
		if len(caseIDs) == 0 {
			return nil
		}
		cases := make([]models.Case, 0, len(caseIDs))
		for _, id := range caseIDs {
			cases = append(cases, models.Case{ID: id})
		}
		if err := db.Model(p).Omit("Cases.*").Association("Cases").Append(cases); err != nil {
			return translate(err, "attach profile cases")
		}
		return nil
	})
}

// GetProfile loads a profile with its cases, their identifiers and tags.
func (s *Store) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var p models.Profile
	err := s.conn(ctx).
		Preload("Cases", func(db *gorm.DB) *gorm.DB { return db.Order("cases.id") }).
		Preload("Cases.Identifiers").
		Preload("Cases.Tags").
		First(&p, id).Error
	if err != nil {
		return nil, translate(err, "get profile")
	}
	return &p, nil
}
