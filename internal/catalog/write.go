package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/diewo77/scam-catalog/validation"
)

const (
	maxValueLength = 255
	maxTagLength   = 100
	maxPathLength  = 500
)

// IdentifierInput is one fact to record on a case.
type IdentifierInput struct {
	Kind  matching.Kind `json:"kind"`
	Value string        `json:"value"`
}

// CustomFieldInput is a labelled fact that does not fit an identifier kind.
type CustomFieldInput struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CaseInput describes a new case.
type CaseInput struct {
	Description  string             `json:"description"`
	Identifiers  []IdentifierInput  `json:"identifiers"`
	CustomFields []CustomFieldInput `json:"custom_fields"`
	Images       []string           `json:"images"`
	Tags         []string           `json:"tags"`
}

func (in CaseInput) validate() validation.Violations {
	v := validation.Violations{}
	for i, ident := range in.Identifiers {
		validateIdentifier("identifiers["+strconv.Itoa(i)+"]", ident, v)
	}
	for i, cf := range in.CustomFields {
		validateCustomField("custom_fields["+strconv.Itoa(i)+"]", cf, v)
	}
	for i, path := range in.Images {
		field := "images[" + strconv.Itoa(i) + "]"
		validation.Required(field, path, v)
		validation.MaxLength(field, path, maxPathLength, v)
	}
	for i, tag := range in.Tags {
		validation.MaxLength("tags["+strconv.Itoa(i)+"]", strings.TrimSpace(tag), maxTagLength, v)
	}
	return v
}

func validateIdentifier(prefix string, in IdentifierInput, v validation.Violations) {
	if !in.Kind.Valid() {
		v[prefix+".kind"] = "invalid"
	}
	validation.MaxLength(prefix+".value", in.Value, maxValueLength, v)
}

func validateCustomField(prefix string, in CustomFieldInput, v validation.Violations) {
	validation.Required(prefix+".label", in.Label, v)
	validation.MaxLength(prefix+".label", in.Label, maxValueLength, v)
	validation.MaxLength(prefix+".value", in.Value, maxValueLength, v)
}

// CreateCase records a pending case with its identifiers, images and tags in
// one transaction, linking it to related cases as each identifier is saved.
func (s *Service) CreateCase(ctx context.Context, in CaseInput) (*models.Case, error) {
	if v := in.validate(); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	var id uint
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		c := &models.Case{Status: models.CaseStatusPending, Description: in.Description}
		if err := s.store.CreateCase(ctx, c); err != nil {
			return err
		}
		id = c.ID
		for _, ident := range in.Identifiers {
			if _, err := s.addIdentifier(ctx, c.ID, ident); err != nil {
				return err
			}
		}
		for _, cf := range in.CustomFields {
			if err := s.store.AddCustomField(ctx, newCustomField(c.ID, cf)); err != nil {
				return err
			}
		}
		for _, path := range in.Images {
			if err := s.store.AddImage(ctx, &models.Image{CaseID: c.ID, Path: path}); err != nil {
				return err
			}
		}
		return s.store.AttachTags(ctx, c, in.Tags)
	})
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	s.log.Info("case created", "case_id", id, "identifiers", len(in.Identifiers))
	return s.getCase(ctx, id)
}

// AddIdentifier records one more fact on an existing case.
func (s *Service) AddIdentifier(ctx context.Context, caseID uint, in IdentifierInput) (*models.Identifier, error) {
	v := validation.Violations{}
	validateIdentifier("identifier", in, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	var rec *models.Identifier
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		found, err := s.store.ExistingCaseIDs(ctx, []uint{caseID})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("case %d: %w", caseID, ErrNotFound)
		}
		rec, err = s.addIdentifier(ctx, caseID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add identifier: %w", err)
	}
	return rec, nil
}

// AddCustomField records a labelled fact on an existing case.
func (s *Service) AddCustomField(ctx context.Context, caseID uint, in CustomFieldInput) (*models.CustomField, error) {
	v := validation.Violations{}
	validateCustomField("custom_field", in, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if _, err := s.getCase(ctx, caseID); err != nil {
		return nil, err
	}
	rec := newCustomField(caseID, in)
	if err := s.store.AddCustomField(ctx, rec); err != nil {
		return nil, fmt.Errorf("add custom field: %w", err)
	}
	return rec, nil
}

func newCustomField(caseID uint, in CustomFieldInput) *models.CustomField {
	return &models.CustomField{CaseID: caseID, Label: strings.TrimSpace(in.Label), Value: in.Value}
}

// addIdentifier persists one identifier and runs linkage in ctx's transaction.
func (s *Service) addIdentifier(ctx context.Context, caseID uint, in IdentifierInput) (*models.Identifier, error) {
	rec := &models.Identifier{CaseID: caseID, Kind: in.Kind, Value: in.Value}
	if err := s.store.CreateIdentifier(ctx, rec); err != nil {
		return nil, err
	}
	s.linker.OnIdentifierSaved(ctx, rec)
	return rec, nil
}

// UpdateIdentifier replaces the value of an identifier and re-runs linkage.
// Links derived from the previous value are kept.
func (s *Service) UpdateIdentifier(ctx context.Context, id uint, value string) (*models.Identifier, error) {
	var rec *models.Identifier
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.store.GetIdentifier(ctx, id)
		if err != nil {
			return notFound(err, "identifier")
		}
		v := validation.Violations{}
		validateIdentifier("identifier", IdentifierInput{Kind: rec.Kind, Value: value}, v)
		if !v.Empty() {
			return &ValidationError{Violations: v}
		}
		rec.Value = value
		if err := s.store.SaveIdentifier(ctx, rec); err != nil {
			return err
		}
		s.linker.OnIdentifierSaved(ctx, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update identifier %d: %w", id, err)
	}
	return rec, nil
}

// Approve publishes a case.
func (s *Service) Approve(ctx context.Context, caseID uint) (*models.Case, error) {
	return s.review(ctx, caseID, func(c *models.Case) { c.Approve(s.now()) })
}

// Reject withdraws a case from review.
func (s *Service) Reject(ctx context.Context, caseID uint) (*models.Case, error) {
	return s.review(ctx, caseID, func(c *models.Case) { c.Reject() })
}

func (s *Service) review(ctx context.Context, caseID uint, apply func(*models.Case)) (*models.Case, error) {
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	apply(c)
	if err := s.store.SaveCase(ctx, c); err != nil {
		return nil, fmt.Errorf("save case %d: %w", caseID, err)
	}
	s.log.Info("case reviewed", "case_id", caseID, "status", c.Status)
	return c, nil
}

// Unlink removes the edge between two cases. Cases that still share a key
// are linked again by the next save of that key or by a rebuild.
func (s *Service) Unlink(ctx context.Context, a, b uint) error {
	if a == b {
		return fmt.Errorf("unlink case %d from itself: %w", a, ErrInvalidInput)
	}
	found, err := s.store.ExistingCaseIDs(ctx, []uint{a, b})
	if err != nil {
		return err
	}
	if len(found) != 2 {
		return fmt.Errorf("unlink %d-%d: %w", a, b, ErrNotFound)
	}
	if err := s.store.UnlinkCases(ctx, a, b); err != nil {
		return err
	}
	s.log.Info("cases unlinked", "case_id", a, "other_id", b)
	return nil
}

// GrantEntitlement unlocks a case for a user. Granting twice is a no-op.
func (s *Service) GrantEntitlement(ctx context.Context, userID, caseID uint) error {
	if userID == 0 {
		return fmt.Errorf("grant entitlement: anonymous user: %w", ErrInvalidInput)
	}
	if _, err := s.getCase(ctx, caseID); err != nil {
		return err
	}
	created, err := s.store.GrantEntitlement(ctx, userID, caseID, s.now())
	if err != nil {
		return fmt.Errorf("grant entitlement: %w", err)
	}
	if created {
		s.log.Info("case unlocked", "user_id", userID, "case_id", caseID)
	}
	return nil
}

// SetFieldTier changes the tier of a governed field and drops its cached value.
func (s *Service) SetFieldTier(ctx context.Context, key disclosure.FieldKey, tier models.AccessTier) error {
	v := validation.Violations{}
	validation.Required("entity_type", key.EntityType, v)
	validation.Required("field_name", key.FieldName, v)
	validation.OneOf("tier", string(tier), []string{string(models.TierPublic), string(models.TierPremium)}, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	if err := s.store.SetFieldTier(ctx, key.EntityType, key.FieldName, tier); err != nil {
		return err
	}
	if s.tiers != nil {
		s.tiers.Invalidate(key)
	}
	s.log.Info("field tier changed", "field", key.String(), "tier", tier)
	return nil
}

// CreateProfile groups existing cases under a name.
func (s *Service) CreateProfile(ctx context.Context, name, imagePath string, caseIDs []uint) (*models.Profile, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLength("name", name, maxValueLength, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	found, err := s.store.ExistingCaseIDs(ctx, caseIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(uniqueIDs(caseIDs)) {
		return nil, fmt.Errorf("profile cases: %w", ErrNotFound)
	}
	p := &models.Profile{Name: strings.TrimSpace(name), ImagePath: imagePath}
	if err := s.store.CreateProfile(ctx, p, found); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) getCase(ctx context.Context, id uint) (*models.Case, error) {
	c, err := s.store.GetCase(ctx, id)
	if err != nil {
		return nil, notFound(err, "case")
	}
	return c, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// FieldPolicies lists every governed field and its tier.
func (s *Service) FieldPolicies(ctx context.Context) ([]models.FieldAccessPolicy, error) {
	return s.store.FieldPolicies(ctx)
}
