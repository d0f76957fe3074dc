package models

import (
	"testing"
	"time"

	"github.com/diewo77/scam-catalog/internal/matching"
)

func TestCase_ApproveReject(t *testing.T) {
	c := &Case{Status: CaseStatusPending}
	if c.IsApproved() {
		t.Fatal("pending case should not be approved")
	}

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c.Approve(at)
	if !c.IsApproved() {
		t.Fatal("expected approved")
	}
	if c.ApprovedAt == nil || !c.ApprovedAt.Equal(at) {
		t.Errorf("ApprovedAt = %v, want %v", c.ApprovedAt, at)
	}

	c.Reject()
	if c.Status != CaseStatusRejected {
		t.Errorf("Status = %s, want rejected", c.Status)
	}
	if c.ApprovedAt != nil {
		t.Error("ApprovedAt should be cleared on reject")
	}
}

func TestCase_Title(t *testing.T) {
	tests := []struct {
		name string
		c    Case
		want string
	}{
		{
			name: "first name",
			c: Case{ID: 4, Identifiers: []Identifier{
				{Kind: matching.KindPhone, Value: "+95123"},
				{Kind: matching.KindName, Value: "Ko Aung"},
				{Kind: matching.KindName, Value: "Mg Mg"},
			}},
			want: "Ko Aung",
		},
		{
			name: "blank name skipped",
			c: Case{ID: 5, Identifiers: []Identifier{
				{Kind: matching.KindName, Value: ""},
			}},
			want: "Case #5",
		},
		{
			name: "no identifiers",
			c:    Case{ID: 6},
			want: "Case #6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCase_ValuesOfAndTags(t *testing.T) {
	c := Case{
		Identifiers: []Identifier{
			{Kind: matching.KindEmail, Value: "a@x.io"},
			{Kind: matching.KindPhone, Value: "1"},
			{Kind: matching.KindEmail, Value: "b@x.io"},
		},
		Tags: []Tag{{Name: "romance"}, {Name: "crypto"}},
	}
	emails := c.ValuesOf(matching.KindEmail)
	if len(emails) != 2 || emails[0] != "a@x.io" || emails[1] != "b@x.io" {
		t.Errorf("ValuesOf(email) = %v", emails)
	}
	if got := c.ValuesOf(matching.KindWebsite); got != nil {
		t.Errorf("ValuesOf(website) = %v, want nil", got)
	}
	tags := c.TagNames()
	if len(tags) != 2 || tags[0] != "romance" {
		t.Errorf("TagNames() = %v", tags)
	}
}

func TestNewCaseLink(t *testing.T) {
	tests := []struct {
		name      string
		a, b      uint
		wantOK    bool
		low, high uint
	}{
		{"ordered", 1, 2, true, 1, 2},
		{"reversed", 9, 3, true, 3, 9},
		{"self", 5, 5, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok := NewCaseLink(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if link.LowID != tt.low || link.HighID != tt.high {
				t.Errorf("link = %+v, want (%d,%d)", link, tt.low, tt.high)
			}
		})
	}

	link, _ := NewCaseLink(3, 9)
	if link.Other(3) != 9 || link.Other(9) != 3 {
		t.Errorf("Other() returned wrong endpoint for %+v", link)
	}
}

func TestIdentifier_RefreshKey(t *testing.T) {
	ident := &Identifier{Kind: matching.KindPhone, Value: "+95 09123456"}
	if err := ident.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if ident.MatchKey != "+9509123456" {
		t.Errorf("MatchKey = %q", ident.MatchKey)
	}

	ident.Value = "   "
	ident.RefreshKey()
	if ident.MatchKey != "" {
		t.Errorf("blank value should clear MatchKey, got %q", ident.MatchKey)
	}

	if (&Identifier{Kind: matching.KindWebsite}).Links() {
		t.Error("website identifiers must not link")
	}
}

func TestAccessTier_Valid(t *testing.T) {
	if !TierPublic.Valid() || !TierPremium.Valid() {
		t.Error("known tiers should be valid")
	}
	if AccessTier("gold").Valid() {
		t.Error("unknown tier should be invalid")
	}
	p := FieldAccessPolicy{EntityType: "identifier", FieldName: "phone"}
	if p.Code() != "identifier.phone" {
		t.Errorf("Code() = %q", p.Code())
	}
}
