package store

import (
	"context"
	"fmt"

	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm/clause"
)

// LinkCases inserts the undirected edge between a and b if it is absent.
// created reports whether a new row was written. Linking a case to itself
// is a no-op.
func (s *Store) LinkCases(ctx context.Context, a, b uint) (created bool, err error) {
	link, ok := models.NewCaseLink(a, b)
	if !ok {
		return false, nil
	}
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
	if res.Error != nil {
		return false, fmt.Errorf("link cases %d-%d: %w", link.LowID, link.HighID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// LockMatchKey holds a transaction-scoped lock on (kind, key) so that two
// writers of the same key link serially and each sees the other's committed
// row. It is a no-op on sqlite, which serializes writers itself.
func (s *Store) LockMatchKey(ctx context.Context, kind matching.Kind, key string) error {
	db := s.conn(ctx)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", string(kind)+":"+key).Error
	return translate(err, "lock match key")
}

// UnlinkCases removes the edge between a and b, if any.
func (s *Store) UnlinkCases(ctx context.Context, a, b uint) error {
	link, ok := models.NewCaseLink(a, b)
	if !ok {
		return nil
	}
	err := s.conn(ctx).Where("low_id = ? AND high_id = ?", link.LowID, link.HighID).Delete(&models.CaseLink{}).Error
	return translate(err, "unlink cases")
}

// RelatedIDs returns the ids of every case sharing an edge with id, ascending.
func (s *Store) RelatedIDs(ctx context.Context, id uint) ([]uint, error) {
	var links []models.CaseLink
	err := s.conn(ctx).Where("low_id = ? OR high_id = ?", id, id).Find(&links).Error
	if err != nil {
		return nil, translate(err, "related cases")
	}
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.Other(id))
	}
	sortIDs(ids)
	return ids, nil
}

// CountLinks returns the number of stored edges.
func (s *Store) CountLinks(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.CaseLink{}).Count(&n).Error
	return n, translate(err, "count links")
}
