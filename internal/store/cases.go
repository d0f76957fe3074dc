package store

import (
	"context"
	"strings"

	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm"
)

// preloadCase loads everything a case view needs.
func preloadCase(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Identifiers", func(db *gorm.DB) *gorm.DB { return db.Order("identifiers.id") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.id") }).
		Preload("CustomFields", func(db *gorm.DB) *gorm.DB { return db.Order("custom_fields.id") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") })
}

// CreateCase inserts the case row only; identifiers, images and tags are
// written separately so each identifier save can run its own hook.
func (s *Store) CreateCase(ctx context.Context, c *models.Case) error {
	err := s.conn(ctx).Omit("Identifiers", "Images", "Tags").Create(c).Error
	return translate(err, "create case")
}

// SaveCase updates the scalar columns of a case.
func (s *Store) SaveCase(ctx context.Context, c *models.Case) error {
	err := s.conn(ctx).Omit("Identifiers", "Images", "Tags").Save(c).Error
	return translate(err, "save case")
}

// GetCase loads a case with its identifiers, images and tags.
func (s *Store) GetCase(ctx context.Context, id uint) (*models.Case, error) {
	var c models.Case
	if err := preloadCase(s.conn(ctx)).First(&c, id).Error; err != nil {
		return nil, translate(err, "get case")
	}
	return &c, nil
}

// GetCases loads the given cases, ordered by id. Unknown ids are skipped.
func (s *Store) GetCases(ctx context.Context, ids []uint) ([]models.Case, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cases []models.Case
	err := preloadCase(s.conn(ctx)).Where("id IN ?", ids).Order("id").Find(&cases).Error
	return cases, translate(err, "get cases")
}

// ExistingCaseIDs filters ids down to the cases that exist.
func (s *Store) ExistingCaseIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	err := s.conn(ctx).Model(&models.Case{}).Where("id IN ?", ids).Order("id").Pluck("id", &found).Error
	return found, translate(err, "existing cases")
}

// AddImage attaches an image reference to a case.
func (s *Store) AddImage(ctx context.Context, img *models.Image) error {
	return translate(s.conn(ctx).Create(img).Error, "add image")
}

// AddCustomField attaches a labelled fact to a case.
func (s *Store) AddCustomField(ctx context.Context, f *models.CustomField) error {
	return translate(s.conn(ctx).Create(f).Error, "add custom field")
}

// AttachTags gets or creates each named tag and appends it to the case.
// Blank names are ignored; names are trimmed.
func (s *Store) AttachTags(ctx context.Context, c *models.Case, names []string) error {
	db := s.conn(ctx)
	var tags []models.Tag
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tag := models.Tag{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			return translate(err, "tag "+name)
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	if err := db.Model(c).Association("Tags").Append(tags); err != nil {
		return translate(err, "attach tags")
	}
	return nil
}

// CasePage is one page of cases plus the total match count.
type CasePage struct {
	Cases []models.Case
	Total int64
}

// CasesByStatus pages cases of one status. Approved cases are ordered by
// approval time, others by creation time, newest first.
func (s *Store) CasesByStatus(ctx context.Context, status models.CaseStatus, limit, offset int) (CasePage, error) {
	db := s.conn(ctx).Model(&models.Case{}).Where("status = ?", status).Session(&gorm.Session{})
	var page CasePage
	if err := db.Count(&page.Total).Error; err != nil {
		return CasePage{}, translate(err, "count cases")
	}
	order := "created_at DESC, id DESC"
	if status == models.CaseStatusApproved {
		order = "approved_at DESC, id DESC"
	}
	err := preloadCase(db).Order(order).Limit(limit).Offset(offset).Find(&page.Cases).Error
	return page, translate(err, "list cases")
}
