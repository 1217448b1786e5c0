package models

import "time"

type Allowance struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	AssignmentID uint64    `gorm:"not null;index" json:"assignment_id"`
	Type         string    `gorm:"type:varchar(50);not null" json:"type"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Reason       string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}
