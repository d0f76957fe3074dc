package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can browse cases and unlock their details.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	// IsStaff users curate cases and see every field unmasked.
	IsStaff bool `gorm:"default:false" json:"is_staff"`
}
