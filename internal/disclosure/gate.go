// Package disclosure decides, per viewer and per field, whether a governed
// value is shown as stored or masked. Two seams stay separate: a coarse
// per-case entitlement and a fine per-field tier. A viewer never gets an
// error from here; lookup failures resolve to the more restrictive answer.
package disclosure

import (
	"context"
	"log/slog"

	"github.com/diewo77/scam-catalog/internal/metrics"
	"github.com/diewo77/scam-catalog/internal/models"
)

// Viewer is who is looking. UserID 0 means anonymous. FreeTrial carries the
// deployment's free-trial switch into each decision.
type Viewer struct {
	UserID    uint
	Staff     bool
	FreeTrial bool
}

// Authenticated reports whether the viewer is signed in.
func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

// EntitlementChecker reports whether a user unlocked a case.
type EntitlementChecker interface {
	HasEntitlement(ctx context.Context, userID, caseID uint) (bool, error)
}

// Decision is a visibility verdict and the rule that produced it.
type Decision struct {
	Visible bool
	Reason  string
}

// Gate is the disclosure policy.
type Gate struct {
	tiers        TierResolver
	entitlements EntitlementChecker
	log          *slog.Logger
	metrics      *metrics.Metrics
}

// NewGate creates a Gate. log and m may be nil.
func NewGate(tiers TierResolver, entitlements EntitlementChecker, log *slog.Logger, m *metrics.Metrics) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{tiers: tiers, entitlements: entitlements, log: log, metrics: m}
}

// HasCaseAccess is the coarse decision: staff, free trial, or an
// entitlement for this exact case.
func (g *Gate) HasCaseAccess(ctx context.Context, v Viewer, caseID uint) bool {
	ok, _ := g.caseAccess(ctx, v, caseID)
	return ok
}

func (g *Gate) caseAccess(ctx context.Context, v Viewer, caseID uint) (bool, string) {
	if v.Staff {
		return true, metrics.ReasonStaff
	}
	if v.FreeTrial {
		return true, metrics.ReasonFreeTrial
	}
	if !v.Authenticated() || g.entitlements == nil {
		return false, ""
	}
	ok, err := g.entitlements.HasEntitlement(ctx, v.UserID, caseID)
	if err != nil {
		g.log.Warn("entitlement lookup failed; treating as locked",
			"user_id", v.UserID, "case_id", caseID, "error", err)
		return false, ""
	}
	if ok {
		return true, metrics.ReasonEntitlement
	}
	return false, ""
}

// IsVisible reports whether v may see the named field of the case unmasked.
func (g *Gate) IsVisible(ctx context.Context, v Viewer, caseID uint, entityType, fieldName string) bool {
	return g.Decide(ctx, v, caseID, FieldKey{EntityType: entityType, FieldName: fieldName}).Visible
}

// Decide returns the full decision for one field of one case.
func (g *Gate) Decide(ctx context.Context, v Viewer, caseID uint, key FieldKey) Decision {
	return g.ForCase(ctx, v, caseID).Decide(ctx, key)
}

// ForCase resolves the coarse decision once so that every field of a case
// can be decided without repeating the entitlement lookup.
func (g *Gate) ForCase(ctx context.Context, v Viewer, caseID uint) *CaseGate {
	ok, reason := g.caseAccess(ctx, v, caseID)
	return &CaseGate{gate: g, caseID: caseID, access: ok, reason: reason}
}

// CaseGate decides the fields of one case for one viewer.
type CaseGate struct {
	gate   *Gate
	caseID uint
	access bool
	reason string
}

// HasAccess reports the coarse decision.
func (c *CaseGate) HasAccess() bool {
	return c.access
}

// Visible reports whether the field is shown unmasked.
func (c *CaseGate) Visible(ctx context.Context, key FieldKey) bool {
	return c.Decide(ctx, key).Visible
}

// Decide applies the field tier when the coarse decision did not grant access.
func (c *CaseGate) Decide(ctx context.Context, key FieldKey) Decision {
	d := c.decide(ctx, key)
	c.gate.metrics.IncrementDisclosure(d.Reason)
	return d
}

func (c *CaseGate) decide(ctx context.Context, key FieldKey) Decision {
	if c.access {
		return Decision{Visible: true, Reason: c.reason}
	}
	if c.gate.tiers == nil {
		return Decision{Visible: true, Reason: metrics.ReasonPublic}
	}
	tier, err := c.gate.tiers.Tier(ctx, key)
	if err != nil {
		c.gate.log.Warn("field tier lookup failed; masking",
			"field", key.String(), "case_id", c.caseID, "error", err)
		return Decision{Visible: false, Reason: metrics.ReasonPremium}
	}
	if tier == models.TierPremium {
		return Decision{Visible: false, Reason: metrics.ReasonPremium}
	}
	return Decision{Visible: true, Reason: metrics.ReasonPublic}
}
