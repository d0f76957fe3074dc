package models

import (
	"fmt"
	"time"

	"github.com/diewo77/scam-catalog/internal/matching"
)

// CaseStatus represents the review state of a case.
type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "pending"
	CaseStatusApproved CaseStatus = "approved"
	CaseStatusRejected CaseStatus = "rejected"
)

// Case is one curated scammer record.
// Identifiers, custom fields and images are removed with their case; related
// cases are stored as CaseLink rows rather than a self-referencing join table.
type Case struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Status      CaseStatus `gorm:"size:10;not null;default:'pending';index" json:"status"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ApprovedAt  *time.Time `gorm:"index" json:"approved_at,omitempty"`

	Identifiers  []Identifier  `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"identifiers,omitempty"`
	Images       []Image       `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CustomFields []CustomField `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"custom_fields,omitempty"`
	Tags         []Tag         `gorm:"many2many:case_tags;" json:"tags,omitempty"`
}

// IsApproved reports whether the case is publicly listed.
func (c *Case) IsApproved() bool {
	return c.Status == CaseStatusApproved
}

// Approve marks the case approved at the given time.
func (c *Case) Approve(at time.Time) {
	c.Status = CaseStatusApproved
	c.ApprovedAt = &at
}

// Reject marks the case rejected and clears its approval time.
func (c *Case) Reject() {
	c.Status = CaseStatusRejected
	c.ApprovedAt = nil
}

// Title returns the first recorded name, or a generic label when none exists.
func (c *Case) Title() string {
	for _, ident := range c.Identifiers {
		if ident.Kind == matching.KindName && ident.Value != "" {
			return ident.Value
		}
	}
	return fmt.Sprintf("Case #%d", c.ID)
}

// ValuesOf returns the raw values of the given kind in insertion order.
func (c *Case) ValuesOf(kind matching.Kind) []string {
	var out []string
	for _, ident := range c.Identifiers {
		if ident.Kind == kind {
			out = append(out, ident.Value)
		}
	}
	return out
}

// TagNames returns the names of the tags attached to the case.
func (c *Case) TagNames() []string {
	out := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		out = append(out, t.Name)
	}
	return out
}

// Image is a picture attached to a case. Storage of the file itself is external.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CaseID    uint      `gorm:"index;not null" json:"case_id"`
	Path      string    `gorm:"size:500" json:"path"`
}

// CustomField is a free-form labelled fact on a case. It never links.
type CustomField struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CaseID    uint      `gorm:"index;not null" json:"case_id"`
	Label     string    `gorm:"size:255;not null" json:"label"`
	Value     string    `gorm:"size:255" json:"value"`
}

// Tag is a name-unique label shared between cases.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// CaseLink is one undirected edge of the related-case relation.
// The pair is always stored with LowID < HighID so (a,b) and (b,a) collapse to one row.
type CaseLink struct {
	LowID     uint      `gorm:"primaryKey;autoIncrement:false" json:"low_id"`
	HighID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"high_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCaseLink builds the canonical edge for two distinct cases.
// ok is false when a and b are the same case.
func NewCaseLink(a, b uint) (link CaseLink, ok bool) {
	if a == b {
		return CaseLink{}, false
	}
	if a > b {
		a, b = b, a
	}
	return CaseLink{LowID: a, HighID: b}, true
}

// Other returns the endpoint of the edge that is not id.
func (l CaseLink) Other(id uint) uint {
	if l.LowID == id {
		return l.HighID
	}
	return l.LowID
}
