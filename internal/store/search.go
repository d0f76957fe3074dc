package store

import (
	"context"
	"strings"

	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/gorm"
)

// SearchField restricts a search to one attribute of a case.
type SearchField string

const (
	SearchAll            SearchField = "all"
	SearchName           SearchField = "name"
	SearchPhone          SearchField = "phone"
	SearchEmail          SearchField = "email"
	SearchWebsite        SearchField = "website"
	SearchPaymentAccount SearchField = "payment_account"
	SearchTag            SearchField = "tag"
)

// SearchFilter is a prepared substring search. PhoneText is matched against
// phone numbers and Text against everything else.
type SearchFilter struct {
	Field     SearchField
	Text      string
	PhoneText string
}

// SearchApproved pages approved cases matching f, newest approval first.
// An empty filter text matches every approved case.
func (s *Store) SearchApproved(ctx context.Context, f SearchFilter, limit, offset int) (CasePage, error) {
	db := s.conn(ctx)
	q := db.Model(&models.Case{}).Where("status = ?", models.CaseStatusApproved)
	if f.Text != "" {
		q = q.Where(searchClause(db, f))
	}
	q = q.Session(&gorm.Session{})
	var page CasePage
	if err := q.Count(&page.Total).Error; err != nil {
		return CasePage{}, translate(err, "count search")
	}
	err := preloadCase(q).Order("approved_at DESC, id DESC").Limit(limit).Offset(offset).Find(&page.Cases).Error
	return page, translate(err, "search cases")
}

// searchClause builds the case id predicate for f.
func searchClause(db *gorm.DB, f SearchFilter) *gorm.DB {
	text := likePattern(f.Text)
	phone := likePattern(f.PhoneText)
	cond := db.Session(&gorm.Session{NewDB: true})
	switch f.Field {
	case SearchName:
		return cond.Where("id IN (?)", identifierMatch(db, matching.KindName, text))
	case SearchPhone:
		return cond.Where("id IN (?)", identifierMatch(db, matching.KindPhone, phone))
	case SearchEmail:
		return cond.Where("id IN (?)", identifierMatch(db, matching.KindEmail, text))
	case SearchWebsite:
		return cond.Where("id IN (?)", identifierMatch(db, matching.KindWebsite, text))
	case SearchPaymentAccount:
		return cond.Where("id IN (?)", identifierMatch(db, matching.KindPaymentAccount, text))
	case SearchTag:
		return cond.Where("id IN (?)", tagMatch(db, text))
	}
	return cond.
		Where("id IN (?)", identifierMatch(db, matching.KindName, text)).
		Or("LOWER(description) LIKE ? ESCAPE '\\'", text).
		Or("id IN (?)", identifierMatch(db, matching.KindPhone, phone)).
		Or("id IN (?)", identifierMatch(db, matching.KindEmail, text)).
		Or("id IN (?)", identifierMatch(db, matching.KindWebsite, text)).
		Or("id IN (?)", identifierMatch(db, matching.KindPaymentAccount, text)).
		Or("id IN (?)", tagMatch(db, text))
}

func identifierMatch(db *gorm.DB, kind matching.Kind, pattern string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Identifier{}).
		Select("case_id").
		Where("kind = ? AND LOWER(value) LIKE ? ESCAPE '\\'", kind, pattern)
}

func tagMatch(db *gorm.DB, pattern string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("case_tags").
		Select("case_tags.case_id").
		Joins("JOIN tags ON tags.id = case_tags.tag_id").
		Where("LOWER(tags.name) LIKE ? ESCAPE '\\'", pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a case-insensitive substring LIKE.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
