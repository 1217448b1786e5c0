package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldops/duty-assignment-api/internal/constants"
	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/fieldops/duty-assignment-api/internal/repository"
	"github.com/fieldops/duty-assignment-api/internal/utils"
	"gorm.io/gorm"
)

// AssignmentService owns the assignment state machine. Every transition is a
// single unit: validate current state, validate payload, persist through a
// conditional write, then best-effort notify. Persistence failure aborts the
// transition; notification failure never does.
type AssignmentService struct {
	assignments repository.AssignmentStore
	persons     repository.PersonDirectory
	posts       repository.PostDirectory
	eligibility *EligibilityValidator
	capacity    *CapacityGuard
	notifier    NotificationDispatcher
	activity    ActivityLogger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignments repository.AssignmentStore,
	persons repository.PersonDirectory,
	posts repository.PostDirectory,
	eligibility *EligibilityValidator,
	capacity *CapacityGuard,
	notifier NotificationDispatcher,
	activity ActivityLogger,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		persons:     persons,
		posts:       posts,
		eligibility: eligibility,
		capacity:    capacity,
		notifier:    notifier,
		activity:    activity,
	}
}

// AllowanceInput represents one allowance attached to a new assignment
type AllowanceInput struct {
	Type   string
	Amount float64
	Reason string
}

// CreateAssignmentInput represents input for creating an assignment
type CreateAssignmentInput struct {
	OperatorID          uint64
	PostID              uint64
	SupervisorID        uint64
	StartDate           time.Time
	EndDate             *time.Time
	AssignmentType      models.AssignmentType
	ShiftType           models.ShiftType
	SpecialInstructions string
	Allowances          []AllowanceInput
	RequestedBy         Actor
}

// Create creates a new assignment. The requester's role decides whether it
// starts ACTIVE or waits in PENDING for approval.
func (s *AssignmentService) Create(ctx context.Context, input CreateAssignmentInput) (*models.Assignment, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	eligibility, err := s.eligibility.CheckEligible(ctx, input.OperatorID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, apperrors.NotEligible("%s", eligibility.Reason)
	}

	capacity, err := s.capacity.CheckCapacity(ctx, input.PostID, input.RequestedBy.Role)
	if err != nil {
		return nil, err
	}
	if !capacity.Allowed {
		return nil, apperrors.PostUnavailable("%s", capacity.Reason)
	}

	post, err := s.posts.GetPost(ctx, input.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("post %d not found", input.PostID)
		}
		return nil, fmt.Errorf("failed to resolve post: %w", err)
	}

	if _, err := s.persons.GetSupervisor(ctx, input.SupervisorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("supervisor %d not found", input.SupervisorID)
		}
		return nil, fmt.Errorf("failed to resolve supervisor: %w", err)
	}

	reference, err := utils.GenerateAssignmentReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignment reference: %w", err)
	}

	assignment := &models.Assignment{
		Reference:           reference,
		OperatorID:          input.OperatorID,
		PostID:              input.PostID,
		LocationID:          post.LocationID,
		SupervisorID:        input.SupervisorID,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		AssignmentType:      input.AssignmentType,
		ShiftType:           input.ShiftType,
		Status:              ResolveInitialStatus(input.RequestedBy.Role),
		RequestedByID:       input.RequestedBy.ID,
		RequestedByRole:     input.RequestedBy.Role,
		RequestedByName:     input.RequestedBy.DisplayName,
		SpecialInstructions: input.SpecialInstructions,
	}
	for _, a := range input.Allowances {
		assignment.Allowances = append(assignment.Allowances, models.Allowance{
			Type:   a.Type,
			Amount: a.Amount,
			Reason: a.Reason,
		})
	}

	if assignment.Status == models.AssignmentStatusActive {
		// Auto-activated by an elevated role: the requester is the decider.
		now := time.Now()
		assignment.DecidedByID = &input.RequestedBy.ID
		assignment.DecidedByRole = input.RequestedBy.Role
		assignment.DecidedByName = input.RequestedBy.DisplayName
		assignment.DecidedAt = &now
	}

	override := CanOverrideCapacity(input.RequestedBy.Role)
	if err := s.assignments.CreateGuarded(ctx, assignment, override); err != nil {
		return nil, err
	}

	if assignment.Status == models.AssignmentStatusActive {
		s.notifier.Notify(ctx, assignment.OperatorID, "Assignment active",
			fmt.Sprintf("You have been assigned to post %d starting %s", assignment.PostID, assignment.StartDate.Format("2006-01-02")),
			constants.PriorityHigh)
	} else {
		s.notifyApprover(ctx, assignment)
	}
	s.activity.Record(ctx, input.RequestedBy.ID, "assignment.create", "assignment", assignment.ID, map[string]interface{}{
		"operator_id": assignment.OperatorID,
		"post_id":     assignment.PostID,
		"status":      assignment.Status,
	})

	return assignment, nil
}

// Approve transitions a PENDING assignment to ACTIVE.
func (s *AssignmentService) Approve(ctx context.Context, assignmentID uint64, actor Actor) (*models.Assignment, error) {
	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != models.AssignmentStatusPending {
		return nil, apperrors.InvalidTransition("cannot approve assignment in status %s", assignment.Status)
	}

	now := time.Now()
	patch := repository.StatusPatch{
		Status:        models.AssignmentStatusActive,
		DecidedByID:   &actor.ID,
		DecidedByRole: actor.Role,
		DecidedByName: actor.DisplayName,
		DecidedAt:     &now,
	}
	// The post may have filled while the assignment sat in PENDING; the store
	// re-counts under the post row lock so two approvals cannot both land.
	if err := s.assignments.ActivateGuarded(ctx, assignmentID, patch, CanOverrideCapacity(actor.Role)); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, assignment.OperatorID, "Assignment active",
		fmt.Sprintf("Your assignment to post %d has been approved", assignment.PostID),
		constants.PriorityHigh)
	s.activity.Record(ctx, actor.ID, "assignment.approve", "assignment", assignmentID, nil)

	return s.findAssignment(ctx, assignmentID)
}

// Reject transitions a PENDING assignment to REJECTED. A non-empty reason is
// required.
func (s *AssignmentService) Reject(ctx context.Context, assignmentID uint64, actor Actor, reason string) (*models.Assignment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.InvalidPayload("rejection reason is required")
	}
	if len(reason) > constants.MaxReasonLength {
		return nil, apperrors.InvalidPayload("rejection reason exceeds %d characters", constants.MaxReasonLength)
	}

	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != models.AssignmentStatusPending {
		return nil, apperrors.InvalidTransition("cannot reject assignment in status %s", assignment.Status)
	}

	now := time.Now()
	patch := repository.StatusPatch{
		Status:          models.AssignmentStatusRejected,
		DecidedByID:     &actor.ID,
		DecidedByRole:   actor.Role,
		DecidedByName:   actor.DisplayName,
		DecidedAt:       &now,
		RejectionReason: reason,
	}
	if err := s.assignments.UpdateStatus(ctx, assignmentID, patch, models.AssignmentStatusPending); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, assignment.RequestedByID, "Assignment rejected",
		fmt.Sprintf("Assignment %s was rejected: %s", assignment.Reference, reason),
		constants.PriorityNormal)
	s.activity.Record(ctx, actor.ID, "assignment.reject", "assignment", assignmentID, map[string]interface{}{
		"reason": reason,
	})

	return s.findAssignment(ctx, assignmentID)
}

// End transitions an ACTIVE assignment to ENDED. The reason is appended to
// the assignment's special instructions.
func (s *AssignmentService) End(ctx context.Context, assignmentID uint64, actor Actor, endDate time.Time, reason string) (*models.Assignment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.InvalidPayload("end reason is required")
	}
	if len(reason) > constants.MaxReasonLength {
		return nil, apperrors.InvalidPayload("end reason exceeds %d characters", constants.MaxReasonLength)
	}
	if endDate.IsZero() {
		return nil, apperrors.InvalidPayload("end date is required")
	}

	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != models.AssignmentStatusActive {
		return nil, apperrors.InvalidTransition("cannot end assignment in status %s", assignment.Status)
	}
	if !endDate.After(assignment.StartDate) {
		return nil, apperrors.InvalidPayload("end date must be after start date")
	}

	instructions := appendNote(assignment.SpecialInstructions, "Ended: "+reason)
	patch := repository.StatusPatch{
		Status:              models.AssignmentStatusEnded,
		EndDate:             &endDate,
		SpecialInstructions: &instructions,
	}
	if err := s.assignments.UpdateStatus(ctx, assignmentID, patch, models.AssignmentStatusActive); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, assignment.OperatorID, "Assignment ended",
		fmt.Sprintf("Your assignment to post %d ends on %s", assignment.PostID, endDate.Format("2006-01-02")),
		constants.PriorityNormal)
	s.activity.Record(ctx, actor.ID, "assignment.end", "assignment", assignmentID, map[string]interface{}{
		"reason": reason,
	})

	return s.findAssignment(ctx, assignmentID)
}

// GetAssignment returns an assignment with related data
func (s *AssignmentService) GetAssignment(ctx context.Context, assignmentID uint64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID, "Operator", "Post", "Supervisor", "Allowances", "Supersedes")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("assignment %d not found", assignmentID)
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// ListAssignmentsInput represents filters for listing assignments
type ListAssignmentsInput struct {
	OperatorID *uint64
	PostID     *uint64
	Status     *models.AssignmentStatus
	Page       int
	PageSize   int
}

// ListAssignments retrieves assignments matching the filters
func (s *AssignmentService) ListAssignments(ctx context.Context, input ListAssignmentsInput) ([]models.Assignment, int64, error) {
	assignments, total, err := s.assignments.List(ctx, repository.AssignmentFilter{
		OperatorID: input.OperatorID,
		PostID:     input.PostID,
		Status:     input.Status,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}

// findAssignment loads an assignment or surfaces a NotFound domain error.
func (s *AssignmentService) findAssignment(ctx context.Context, assignmentID uint64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("assignment %d not found", assignmentID)
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// notifyApprover routes a pending-approval notification to the requester's
// approving tier, falling back to the assignment's supervisor.
func (s *AssignmentService) notifyApprover(ctx context.Context, assignment *models.Assignment) {
	recipientID := assignment.SupervisorID
	if requester, err := s.persons.GetSupervisor(ctx, assignment.RequestedByID); err == nil && requester.ParentSupervisorID != nil {
		recipientID = *requester.ParentSupervisorID
	}
	s.notifier.Notify(ctx, recipientID, "Assignment awaiting approval",
		fmt.Sprintf("Assignment %s for operator %d requires approval", assignment.Reference, assignment.OperatorID),
		constants.PriorityNormal)
}

func validateCreateInput(input CreateAssignmentInput) error {
	if input.StartDate.IsZero() {
		return apperrors.InvalidPayload("start date is required")
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return apperrors.InvalidPayload("end date must be after start date")
	}
	if !input.AssignmentType.Valid() {
		return apperrors.InvalidPayload("invalid assignment type %q", input.AssignmentType)
	}
	if !input.ShiftType.Valid() {
		return apperrors.InvalidPayload("invalid shift type %q", input.ShiftType)
	}
	if len(input.SpecialInstructions) > constants.MaxSpecialInstructionsLength {
		return apperrors.InvalidPayload("special instructions exceed %d characters", constants.MaxSpecialInstructionsLength)
	}
	for _, a := range input.Allowances {
		if strings.TrimSpace(a.Type) == "" {
			return apperrors.InvalidPayload("allowance type is required")
		}
		if a.Amount < 0 {
			return apperrors.InvalidPayload("allowance amount cannot be negative")
		}
	}
	return nil
}

// appendNote appends a line to possibly-empty free-form instructions.
func appendNote(instructions, note string) string {
	if strings.TrimSpace(instructions) == "" {
		return note
	}
	return instructions + "\n" + note
}
