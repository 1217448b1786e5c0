package dto

import (
	"time"

	"github.com/fieldops/duty-assignment-api/internal/models"
)

// OperatorDTO represents an operator in API responses
type OperatorDTO struct {
	ID          uint64 `json:"id"`
	BadgeNumber string `json:"badge_number"`
	FullName    string `json:"full_name"`
}

// PostDTO represents a post in API responses
type PostDTO struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	LocationID        uint64 `json:"location_id"`
	RequiredHeadcount int    `json:"required_headcount"`
	IsActive          bool   `json:"is_active"`
}

// AllowanceDTO represents an allowance in API responses
type AllowanceDTO struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason,omitempty"`
}

// AssignmentDTO represents an assignment in API responses
type AssignmentDTO struct {
	ID                  uint64                  `json:"id"`
	Reference           string                  `json:"reference"`
	OperatorID          uint64                  `json:"operator_id"`
	PostID              uint64                  `json:"post_id"`
	LocationID          uint64                  `json:"location_id"`
	SupervisorID        uint64                  `json:"supervisor_id"`
	StartDate           time.Time               `json:"start_date"`
	EndDate             *time.Time              `json:"end_date"`
	AssignmentType      models.AssignmentType   `json:"assignment_type"`
	ShiftType           models.ShiftType        `json:"shift_type"`
	Status              models.AssignmentStatus `json:"status"`
	RequestedByID       uint64                  `json:"requested_by_id"`
	RequestedByRole     models.SupervisorRole   `json:"requested_by_role"`
	RequestedByName     string                  `json:"requested_by_name,omitempty"`
	DecidedByID         *uint64                 `json:"decided_by_id,omitempty"`
	DecidedByRole       models.SupervisorRole   `json:"decided_by_role,omitempty"`
	DecidedByName       string                  `json:"decided_by_name,omitempty"`
	DecidedAt           *time.Time              `json:"decided_at,omitempty"`
	RejectionReason     string                  `json:"rejection_reason,omitempty"`
	SupersedesID        *uint64                 `json:"supersedes_id,omitempty"`
	TransferReason      string                  `json:"transfer_reason,omitempty"`
	SpecialInstructions string                  `json:"special_instructions,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
	Operator            *OperatorDTO            `json:"operator,omitempty"`
	Post                *PostDTO                `json:"post,omitempty"`
	Allowances          []AllowanceDTO          `json:"allowances,omitempty"`
}

// AssignmentListResponse represents a paginated list of assignments
type AssignmentListResponse struct {
	Assignments []AssignmentDTO `json:"assignments"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalCount  int64           `json:"total_count"`
}

// Conversion functions

// ToOperatorDTO converts an Operator model to OperatorDTO
func ToOperatorDTO(operator models.Operator) OperatorDTO {
	return OperatorDTO{
		ID:          operator.ID,
		BadgeNumber: operator.BadgeNumber,
		FullName:    operator.FullName,
	}
}

// ToPostDTO converts a Post model to PostDTO
func ToPostDTO(post models.Post) PostDTO {
	return PostDTO{
		ID:                post.ID,
		Name:              post.Name,
		LocationID:        post.LocationID,
		RequiredHeadcount: post.RequiredHeadcount,
		IsActive:          post.IsActive,
	}
}

// ToAssignmentDTO converts an Assignment model to AssignmentDTO
func ToAssignmentDTO(assignment models.Assignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:                  assignment.ID,
		Reference:           assignment.Reference,
		OperatorID:          assignment.OperatorID,
		PostID:              assignment.PostID,
		LocationID:          assignment.LocationID,
		SupervisorID:        assignment.SupervisorID,
		StartDate:           assignment.StartDate,
		EndDate:             assignment.EndDate,
		AssignmentType:      assignment.AssignmentType,
		ShiftType:           assignment.ShiftType,
		Status:              assignment.Status,
		RequestedByID:       assignment.RequestedByID,
		RequestedByRole:     assignment.RequestedByRole,
		RequestedByName:     assignment.RequestedByName,
		DecidedByID:         assignment.DecidedByID,
		DecidedByRole:       assignment.DecidedByRole,
		DecidedByName:       assignment.DecidedByName,
		DecidedAt:           assignment.DecidedAt,
		RejectionReason:     assignment.RejectionReason,
		SupersedesID:        assignment.SupersedesID,
		TransferReason:      assignment.TransferReason,
		SpecialInstructions: assignment.SpecialInstructions,
		CreatedAt:           assignment.CreatedAt,
		UpdatedAt:           assignment.UpdatedAt,
	}

	// Include operator if preloaded
	if assignment.Operator.ID != 0 {
		operator := ToOperatorDTO(assignment.Operator)
		dto.Operator = &operator
	}

	// Include post if preloaded
	if assignment.Post.ID != 0 {
		post := ToPostDTO(assignment.Post)
		dto.Post = &post
	}

	if len(assignment.Allowances) > 0 {
		dto.Allowances = make([]AllowanceDTO, len(assignment.Allowances))
		for i, allowance := range assignment.Allowances {
			dto.Allowances[i] = AllowanceDTO{
				Type:   allowance.Type,
				Amount: allowance.Amount,
				Reason: allowance.Reason,
			}
		}
	}

	return dto
}

// ToAssignmentListResponse converts a slice of assignments to AssignmentListResponse
func ToAssignmentListResponse(assignments []models.Assignment, page, pageSize int, totalCount int64) AssignmentListResponse {
	items := make([]AssignmentDTO, len(assignments))
	for i, assignment := range assignments {
		items[i] = ToAssignmentDTO(assignment)
	}

	return AssignmentListResponse{
		Assignments: items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
	}
}
