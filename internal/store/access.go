package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FieldTier returns the tier stored for one governed field. found is false
// when no policy row exists.
func (s *Store) FieldTier(ctx context.Context, entityType, fieldName string) (tier models.AccessTier, found bool, err error) {
	var p models.FieldAccessPolicy
	err = s.conn(ctx).Where("entity_type = ? AND field_name = ?", entityType, fieldName).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, translate(err, "field tier")
	}
	return p.Tier, true, nil
}

// SetFieldTier creates or overwrites the tier of a field.
func (s *Store) SetFieldTier(ctx context.Context, entityType, fieldName string, tier models.AccessTier) error {
	p := models.FieldAccessPolicy{EntityType: entityType, FieldName: fieldName, Tier: tier}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_type"}, {Name: "field_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
	}).Create(&p).Error
	return translate(err, "set field tier "+p.Code())
}

// FieldPolicies lists every policy row ordered by entity and field.
func (s *Store) FieldPolicies(ctx context.Context) ([]models.FieldAccessPolicy, error) {
	var out []models.FieldAccessPolicy
	err := s.conn(ctx).Order("entity_type, field_name").Find(&out).Error
	return out, translate(err, "field policies")
}

// HasEntitlement reports whether user holds an unlock for the case.
func (s *Store) HasEntitlement(ctx context.Context, userID, caseID uint) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Entitlement{}).
		Where("user_id = ? AND case_id = ?", userID, caseID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "entitlement lookup")
	}
	return n > 0, nil
}

// GrantEntitlement records an unlock for (user, case). Granting twice keeps
// the first purchase time. created reports whether a new row was written.
func (s *Store) GrantEntitlement(ctx context.Context, userID, caseID uint, at time.Time) (created bool, err error) {
	e := models.Entitlement{UserID: userID, CaseID: caseID, PurchasedAt: at}
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&e)
	if res.Error != nil {
		return false, translate(res.Error, "grant entitlement")
	}
	return res.RowsAffected > 0, nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

// UserByEmail loads a user by email, case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error, "create user")
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
