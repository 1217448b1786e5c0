package models

import (
	"time"

	"gorm.io/gorm"
)

type SupervisorRole string

const (
	RoleFrontlineSupervisor SupervisorRole = "FRONTLINE_SUPERVISOR"
	RoleGeneralSupervisor   SupervisorRole = "GENERAL_SUPERVISOR"
	RoleManager             SupervisorRole = "MANAGER"
	RoleDirector            SupervisorRole = "DIRECTOR"
)

type Supervisor struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	FullName           string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Role               SupervisorRole `gorm:"type:varchar(30);not null" json:"role"`
	ParentSupervisorID *uint64        `json:"parent_supervisor_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ParentSupervisor *Supervisor `gorm:"foreignKey:ParentSupervisorID" json:"parent_supervisor,omitempty"`
}
