package models

import (
	"time"
)

// Profile groups several cases believed to describe the same scammer for
// presentation purposes. It is not part of the linkage graph.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ImagePath string    `gorm:"size:500" json:"image_path,omitempty"`
	// Cases holds the grouped cases via the profile_cases join table.
	Cases []Case `gorm:"many2many:profile_cases;" json:"cases,omitempty"`
}
