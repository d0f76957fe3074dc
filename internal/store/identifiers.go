package store

import (
	"context"

	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm"
)

// HoldersOf implements matching.RecordSource with an indexed lookup on
// (kind, match_key).
func (s *Store) HoldersOf(ctx context.Context, kind matching.Kind, key string) ([]matching.Holder, error) {
	var holders []matching.Holder
	err := s.conn(ctx).Model(&models.Identifier{}).
		Select("id AS record_id, case_id").
		Where("kind = ? AND match_key = ?", kind, key).
		Order("id").
		Scan(&holders).Error
	return holders, translate(err, "holders of "+string(kind))
}

// CreateIdentifier inserts an identifier; its match key is derived by the
// model's save hook.
func (s *Store) CreateIdentifier(ctx context.Context, ident *models.Identifier) error {
	return translate(s.conn(ctx).Create(ident).Error, "create identifier")
}

// SaveIdentifier updates an existing identifier, refreshing its match key.
func (s *Store) SaveIdentifier(ctx context.Context, ident *models.Identifier) error {
	return translate(s.conn(ctx).Save(ident).Error, "save identifier")
}

// GetIdentifier loads one identifier by id.
func (s *Store) GetIdentifier(ctx context.Context, id uint) (*models.Identifier, error) {
	var ident models.Identifier
	if err := s.conn(ctx).First(&ident, id).Error; err != nil {
		return nil, translate(err, "get identifier")
	}
	return &ident, nil
}

// IdentifiersOfCases returns the linking identifiers with a non-empty key
// owned by any of the given cases.
func (s *Store) IdentifiersOfCases(ctx context.Context, caseIDs []uint) ([]models.Identifier, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}
	var idents []models.Identifier
	err := s.conn(ctx).
		Where("case_id IN ? AND kind IN ? AND match_key <> ''", caseIDs, matching.LinkingKinds).
		Order("id").
		Find(&idents).Error
	return idents, translate(err, "identifiers of cases")
}

// EachLinkingIdentifier streams every linking identifier in id order, in
// batches of batchSize, calling fn for each one. A non-nil error from fn
// stops the walk.
func (s *Store) EachLinkingIdentifier(ctx context.Context, batchSize int, fn func(ident models.Identifier) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	var batch []models.Identifier
	var fnErr error
	res := s.conn(ctx).
		Where("kind IN ? AND match_key <> ''", matching.LinkingKinds).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			for _, ident := range batch {
				if fnErr = fn(ident); fnErr != nil {
					return fnErr
				}
			}
			return nil
		})
	if fnErr != nil {
		return fnErr
	}
	return translate(res.Error, "walk identifiers")
}
