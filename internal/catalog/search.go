package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/masking"
	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/diewo77/scam-catalog/internal/store"
	"github.com/diewo77/scam-catalog/validation"
)

const (
	searchPageSize  = 9
	pendingPageSize = 12
	// pageWindow is how many page links are shown either side of the current one.
	pageWindow = 1
	tagPrefix  = "tag:"
)

// SearchQuery is a public catalog search.
type SearchQuery struct {
	Query string            `json:"q"`
	Field store.SearchField `json:"field"`
	Page  int               `json:"page"`
}

// CaseSummary is a listing entry rendered for the viewer.
type CaseSummary struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Status     models.CaseStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	ApprovedAt *time.Time        `json:"approved_at,omitempty"`
	Tags       []string          `json:"tags"`
	Image      *DisplayImage     `json:"image,omitempty"`
}

// CaseList is one page of summaries.
type CaseList struct {
	Cases       []CaseSummary     `json:"cases"`
	Query       string            `json:"q,omitempty"`
	Field       store.SearchField `json:"field,omitempty"`
	Page        int               `json:"page"`
	TotalPages  int               `json:"total_pages"`
	PageNumbers []int             `json:"page_numbers"`
	Total       int64             `json:"total"`
}

// Search pages approved cases matching q, newest approval first. In the "all"
// field a "tag:" prefix switches to tag search. Leading zeros are dropped
// from the text matched against phone numbers.
func (s *Service) Search(ctx context.Context, viewer disclosure.Viewer, lang string, q SearchQuery) (*CaseList, error) {
	text := strings.TrimSpace(q.Query)
	field := q.Field
	if field == "" {
		field = store.SearchAll
	}
	if !validSearchField(field) {
		return nil, &ValidationError{Violations: validation.Violations{"field": "invalid"}}
	}
	if field == store.SearchAll && strings.HasPrefix(text, tagPrefix) {
		field = store.SearchTag
		text = strings.TrimPrefix(text, tagPrefix)
	}
	filter := store.SearchFilter{Field: field, Text: text, PhoneText: strings.TrimLeft(text, "0")}

	out, err := paginate(q.Page, searchPageSize, func(limit, offset int) (store.CasePage, error) {
		return s.store.SearchApproved(ctx, filter, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out.Query = text
	out.Field = field
	s.summarize(ctx, viewer, lang, out)
	return out, nil
}

// Pending pages cases awaiting review, newest first. Staff only.
func (s *Service) Pending(ctx context.Context, viewer disclosure.Viewer, lang string, page int) (*CaseList, error) {
	if !viewer.Staff {
		return nil, fmt.Errorf("pending cases: %w", ErrNotFound)
	}
	out, err := paginate(page, pendingPageSize, func(limit, offset int) (store.CasePage, error) {
		return s.store.CasesByStatus(ctx, models.CaseStatusPending, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("pending cases: %w", err)
	}
	s.summarize(ctx, viewer, lang, out)
	return out, nil
}

// paginate fetches page number page, clamping it into range: anything below
// one is the first page and anything past the end is the last.
func paginate(page, size int, fetch func(limit, offset int) (store.CasePage, error)) (*CaseList, error) {
	if page < 1 {
		page = 1
	}
	res, err := fetch(size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	total := totalPages(res.Total, size)
	if page > total {
		page = total
		if res, err = fetch(size, (page-1)*size); err != nil {
			return nil, err
		}
	}
	l := &CaseList{
		Page:        page,
		TotalPages:  total,
		PageNumbers: pageNumbers(page, total),
		Total:       res.Total,
	}
	l.Cases = make([]CaseSummary, 0, len(res.Cases))
	for _, c := range res.Cases {
		l.Cases = append(l.Cases, CaseSummary{
			ID:         c.ID,
			Title:      c.Title(),
			Status:     c.Status,
			CreatedAt:  c.CreatedAt,
			ApprovedAt: c.ApprovedAt,
			Tags:       c.TagNames(),
			Image:      firstImage(c),
		})
	}
	return l, nil
}

// summarize applies disclosure to titles and images of a listing.
func (s *Service) summarize(ctx context.Context, viewer disclosure.Viewer, lang string, l *CaseList) {
	for i := range l.Cases {
		sum := &l.Cases[i]
		cg := s.gate.ForCase(ctx, viewer, sum.ID)
		if !cg.Visible(ctx, IdentifierField(matching.KindName)) {
			sum.Title = fmt.Sprintf("Case #%d", sum.ID)
		}
		if sum.Image != nil && !cg.Visible(ctx, ImageField) {
			sum.Image = &DisplayImage{URL: masking.ImagePlaceholder(s.staticURL, lang), IsMasked: true}
		}
	}
}

func firstImage(c models.Case) *DisplayImage {
	for _, img := range c.Images {
		if img.Path != "" {
			return &DisplayImage{URL: img.Path}
		}
	}
	return nil
}

func validSearchField(f store.SearchField) bool {
	switch f {
	case store.SearchAll, store.SearchName, store.SearchPhone, store.SearchEmail,
		store.SearchWebsite, store.SearchPaymentAccount, store.SearchTag:
		return true
	}
	return false
}

// totalPages is never below one so an empty listing still has a first page.
func totalPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// pageNumbers returns the page links around current: up to 2*pageWindow+1
// consecutive pages, shifted to stay inside [1, total].
func pageNumbers(current, total int) []int {
	start := max(current-pageWindow, 1)
	end := min(current+pageWindow, total)
	if start == 1 {
		end = min(start+2*pageWindow, total)
	}
	if end == total {
		start = max(end-2*pageWindow, 1)
	}
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}
