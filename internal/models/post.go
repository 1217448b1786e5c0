package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a duty location (a "beat") with a configured required headcount.
type Post struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	LocationID        uint64         `gorm:"not null;index" json:"location_id"`
	RequiredHeadcount int            `gorm:"not null;default:1" json:"required_headcount"`
	IsActive          bool           `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignments []Assignment `gorm:"foreignKey:PostID" json:"assignments,omitempty"`
}
