package models

import "time"

type AssignmentStatus string

const (
	AssignmentStatusPending     AssignmentStatus = "PENDING"
	AssignmentStatusActive      AssignmentStatus = "ACTIVE"
	AssignmentStatusRejected    AssignmentStatus = "REJECTED"
	AssignmentStatusEnded       AssignmentStatus = "ENDED"
	AssignmentStatusTransferred AssignmentStatus = "TRANSFERRED"
)

// Live reports whether the status still blocks the operator from receiving
// another assignment.
func (s AssignmentStatus) Live() bool {
	return s == AssignmentStatusPending || s == AssignmentStatusActive
}

// Terminal reports whether no further transition is legal from the status.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentStatusRejected || s == AssignmentStatusEnded || s == AssignmentStatusTransferred
}

// LiveStatuses is the set of statuses counted against the one-live-assignment
// rule, in the form gorm's IN clause wants.
var LiveStatuses = []AssignmentStatus{AssignmentStatusPending, AssignmentStatusActive}

type AssignmentType string

const (
	AssignmentTypePermanent AssignmentType = "PERMANENT"
	AssignmentTypeTemporary AssignmentType = "TEMPORARY"
	AssignmentTypeRelief    AssignmentType = "RELIEF"
)

func (t AssignmentType) Valid() bool {
	switch t {
	case AssignmentTypePermanent, AssignmentTypeTemporary, AssignmentTypeRelief:
		return true
	}
	return false
}

type ShiftType string

const (
	ShiftDay           ShiftType = "DAY"
	ShiftNight         ShiftType = "NIGHT"
	ShiftRoundTheClock ShiftType = "ROUND_THE_CLOCK"
	ShiftRotating      ShiftType = "ROTATING"
)

func (t ShiftType) Valid() bool {
	switch t {
	case ShiftDay, ShiftNight, ShiftRoundTheClock, ShiftRotating:
		return true
	}
	return false
}

// Assignment links an operator to a post for a time interval under a
// supervisor. Assignments are never deleted; termination is the ENDED status.
type Assignment struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	Reference string `gorm:"type:varchar(50);uniqueIndex;not null" json:"reference"`

	OperatorID   uint64 `gorm:"not null;index" json:"operator_id"`
	PostID       uint64 `gorm:"not null;index" json:"post_id"`
	LocationID   uint64 `gorm:"not null" json:"location_id"`
	SupervisorID uint64 `gorm:"not null" json:"supervisor_id"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	AssignmentType AssignmentType   `gorm:"type:varchar(20);not null" json:"assignment_type"`
	ShiftType      ShiftType        `gorm:"type:varchar(20);not null" json:"shift_type"`
	Status         AssignmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	RequestedByID   uint64         `gorm:"not null" json:"requested_by_id"`
	RequestedByRole SupervisorRole `gorm:"type:varchar(30);not null" json:"requested_by_role"`
	RequestedByName string         `gorm:"type:varchar(255)" json:"requested_by_name"`

	DecidedByID     *uint64        `json:"decided_by_id"`
	DecidedByRole   SupervisorRole `gorm:"type:varchar(30)" json:"decided_by_role,omitempty"`
	DecidedByName   string         `gorm:"type:varchar(255)" json:"decided_by_name,omitempty"`
	DecidedAt       *time.Time     `json:"decided_at"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`

	SupersedesID   *uint64 `gorm:"index" json:"supersedes_id"`
	TransferReason string  `gorm:"type:text" json:"transfer_reason,omitempty"`

	SpecialInstructions string `gorm:"type:text" json:"special_instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Operator   Operator    `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	Post       Post        `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Supervisor Supervisor  `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
	Supersedes *Assignment `gorm:"foreignKey:SupersedesID" json:"supersedes,omitempty"`
	Allowances []Allowance `gorm:"foreignKey:AssignmentID" json:"allowances,omitempty"`
}
