package models

import (
	"time"

	"gorm.io/gorm"
)

type EmploymentStatus string

const (
	EmploymentActive     EmploymentStatus = "ACTIVE"
	EmploymentOnLeave    EmploymentStatus = "ON_LEAVE"
	EmploymentSuspended  EmploymentStatus = "SUSPENDED"
	EmploymentTerminated EmploymentStatus = "TERMINATED"
)

type Operator struct {
	ID               uint64           `gorm:"primarykey" json:"id"`
	BadgeNumber      string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"badge_number"`
	FullName         string           `gorm:"type:varchar(255);not null" json:"full_name"`
	EmploymentStatus EmploymentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"employment_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	Assignments []Assignment `gorm:"foreignKey:OperatorID" json:"assignments,omitempty"`
}
