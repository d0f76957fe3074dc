package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/masking"
	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
)

// Governed field keys.
var (
	DescriptionField      = disclosure.FieldKey{EntityType: "case", FieldName: "description"}
	ImageField            = disclosure.FieldKey{EntityType: "image", FieldName: "image"}
	CustomFieldLabelField = disclosure.FieldKey{EntityType: "custom_field", FieldName: "label"}
	CustomFieldValueField = disclosure.FieldKey{EntityType: "custom_field", FieldName: "value"}
)

// IdentifierField is the governed field of an identifier kind.
func IdentifierField(kind matching.Kind) disclosure.FieldKey {
	return disclosure.FieldKey{EntityType: "identifier", FieldName: string(kind)}
}

// DisplayValue is a field value as the viewer may see it.
type DisplayValue struct {
	Value    string `json:"value"`
	IsMasked bool   `json:"is_masked"`
}

// DisplayImage is an image reference as the viewer may see it.
type DisplayImage struct {
	URL      string `json:"url"`
	IsMasked bool   `json:"is_masked"`
}

// DisplayCustomField is a custom field as the viewer may see it.
type DisplayCustomField struct {
	Label DisplayValue `json:"label"`
	Value DisplayValue `json:"value"`
}

// RelatedCase is one approved related case and why it is related.
type RelatedCase struct {
	ID      uint     `json:"id"`
	Title   string   `json:"title"`
	Reasons []string `json:"reasons"`
}

// CaseDetail is the disclosure-filtered view of a case.
type CaseDetail struct {
	ID           uint                             `json:"id"`
	Title        string                           `json:"title"`
	Status       models.CaseStatus                `json:"status"`
	Description  DisplayValue                     `json:"description"`
	CreatedAt    time.Time                        `json:"created_at"`
	ApprovedAt   *time.Time                       `json:"approved_at,omitempty"`
	Fields       map[matching.Kind][]DisplayValue `json:"fields"`
	CustomFields []DisplayCustomField             `json:"custom_fields"`
	Images       []DisplayImage                   `json:"images"`
	Tags         []string                         `json:"tags"`
	HasAccess    bool                             `json:"has_access"`
	Related      []RelatedCase                    `json:"related"`
}

// RenderCaseDetail builds the view of a case for viewer. Non-staff viewers
// only see approved cases; anything else is ErrNotFound. Related cases are
// limited to approved ones.
func (s *Service) RenderCaseDetail(ctx context.Context, viewer disclosure.Viewer, lang string, caseID uint) (*CaseDetail, error) {
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !viewer.Staff && !c.IsApproved() {
		return nil, fmt.Errorf("case %d: %w", caseID, ErrNotFound)
	}

	cg := s.gate.ForCase(ctx, viewer, c.ID)
	d := &CaseDetail{
		ID:           c.ID,
		Title:        c.Title(),
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		ApprovedAt:   c.ApprovedAt,
		Fields:       make(map[matching.Kind][]DisplayValue, len(matching.Kinds)),
		CustomFields: []DisplayCustomField{},
		Images:       []DisplayImage{},
		Tags:         c.TagNames(),
		HasAccess:    cg.HasAccess(),
	}
	d.Description = s.display(ctx, cg, DescriptionField, c.Description, masking.Full)

	for _, kind := range matching.Kinds {
		vals := []DisplayValue{}
		if values := c.ValuesOf(kind); len(values) > 0 {
			visible := cg.Visible(ctx, IdentifierField(kind))
			for _, v := range values {
				vals = append(vals, renderValue(visible, v, func(v string) string { return masking.ForKind(kind, v) }))
			}
		}
		d.Fields[kind] = vals
	}
	// Title comes from names; hide it with them.
	if len(d.Fields[matching.KindName]) > 0 && d.Fields[matching.KindName][0].IsMasked {
		d.Title = fmt.Sprintf("Case #%d", c.ID)
	}

	for _, cf := range c.CustomFields {
		d.CustomFields = append(d.CustomFields, DisplayCustomField{
			Label: s.display(ctx, cg, CustomFieldLabelField, cf.Label, masking.Full),
			Value: s.display(ctx, cg, CustomFieldValueField, cf.Value, masking.Full),
		})
	}

	if len(c.Images) > 0 {
		visible := cg.Visible(ctx, ImageField)
		for _, img := range c.Images {
			if visible && img.Path != "" {
				d.Images = append(d.Images, DisplayImage{URL: img.Path})
				continue
			}
			d.Images = append(d.Images, DisplayImage{URL: masking.ImagePlaceholder(s.staticURL, lang), IsMasked: !visible})
		}
	}

	related, err := s.relatedCases(ctx, cg, lang, c.ID)
	if err != nil {
		return nil, err
	}
	d.Related = related
	return d, nil
}

func (s *Service) display(ctx context.Context, cg *disclosure.CaseGate, key disclosure.FieldKey, value string, mask func(string) string) DisplayValue {
	return renderValue(cg.Visible(ctx, key), value, mask)
}

// renderValue masks value unless visible. Blank values are never masked.
func renderValue(visible bool, value string, mask func(string) string) DisplayValue {
	if visible {
		return DisplayValue{Value: value}
	}
	if value == "" {
		return DisplayValue{Value: value, IsMasked: true}
	}
	return DisplayValue{Value: mask(value), IsMasked: true}
}

// relatedCases lists approved related cases that still share a key with
// caseID. Edges left behind by an updated value have no reasons and are
// skipped. Reason values are masked like the field they come from.
func (s *Service) relatedCases(ctx context.Context, cg *disclosure.CaseGate, lang string, caseID uint) ([]RelatedCase, error) {
	out := []RelatedCase{}
	ids, err := s.store.RelatedIDs(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("related cases: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	cases, err := s.store.GetCases(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("related cases: %w", err)
	}
	approved := make([]uint, 0, len(cases))
	titles := make(map[uint]string, len(cases))
	for i := range cases {
		if !cases[i].IsApproved() {
			continue
		}
		approved = append(approved, cases[i].ID)
		titles[cases[i].ID] = cases[i].Title()
	}
	shared, err := s.linker.SharedKeys(ctx, caseID, approved)
	if err != nil {
		return nil, fmt.Errorf("match reasons: %w", err)
	}
	visible := make(map[matching.Kind]bool, len(matching.LinkingKinds))
	for _, kind := range matching.LinkingKinds {
		visible[kind] = cg.Visible(ctx, IdentifierField(kind))
	}
	for _, id := range approved {
		if len(shared[id]) == 0 {
			continue
		}
		reasons := make([]string, 0, len(shared[id]))
		for _, r := range shared[id] {
			key := r.Key
			if !visible[r.Kind] {
				key = masking.ForKind(r.Kind, key)
			}
			reasons = append(reasons, r.Label(lang)+": "+key)
		}
		out = append(out, RelatedCase{ID: id, Title: titles[id], Reasons: reasons})
	}
	return out, nil
}
