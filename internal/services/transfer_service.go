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

// TransferService composes "end current assignment + create successor" as one
// semantically atomic operation. Either both sides land or neither does; an
// operator is never left with a dangling TRANSFERRED record and no successor.
type TransferService struct {
	assignments repository.AssignmentStore
	persons     repository.PersonDirectory
	posts       repository.PostDirectory
	notifier    NotificationDispatcher
	activity    ActivityLogger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	assignments repository.AssignmentStore,
	persons repository.PersonDirectory,
	posts repository.PostDirectory,
	notifier NotificationDispatcher,
	activity ActivityLogger,
) *TransferService {
	return &TransferService{
		assignments: assignments,
		persons:     persons,
		posts:       posts,
		notifier:    notifier,
		activity:    activity,
	}
}

// TransferInput represents input for transferring an operator to a new post
type TransferInput struct {
	OperatorID      uint64
	NewPostID       uint64
	NewSupervisorID uint64
	NewShiftType    models.ShiftType
	TransferDate    time.Time
	Reason          string
	RequestedBy     Actor
}

// Transfer moves the operator from their current ACTIVE assignment to a new
// one, preserving lineage through the successor's supersedes link. The
// successor goes through the same authority resolution as any create, so a
// front-line supervisor's transfer yields a PENDING successor.
func (s *TransferService) Transfer(ctx context.Context, input TransferInput) (*models.Assignment, error) {
	if err := validateTransferInput(input); err != nil {
		return nil, err
	}

	current, err := s.assignments.FindLiveByOperator(ctx, input.OperatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("operator %d has no active assignment", input.OperatorID)
		}
		return nil, fmt.Errorf("failed to find current assignment: %w", err)
	}
	if current.Status != models.AssignmentStatusActive {
		return nil, apperrors.InvalidTransition("cannot transfer assignment in status %s", current.Status)
	}
	if !input.TransferDate.After(current.StartDate) {
		return nil, apperrors.InvalidPayload("transfer date must be after the current assignment's start date")
	}
	if current.PostID == input.NewPostID {
		return nil, apperrors.InvalidPayload("operator is already assigned to post %d", input.NewPostID)
	}

	post, err := s.posts.GetPost(ctx, input.NewPostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("post %d not found", input.NewPostID)
		}
		return nil, fmt.Errorf("failed to resolve post: %w", err)
	}

	if _, err := s.persons.GetSupervisor(ctx, input.NewSupervisorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("supervisor %d not found", input.NewSupervisorID)
		}
		return nil, fmt.Errorf("failed to resolve supervisor: %w", err)
	}

	reference, err := utils.GenerateAssignmentReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignment reference: %w", err)
	}

	successor := &models.Assignment{
		Reference:       reference,
		OperatorID:      input.OperatorID,
		PostID:          input.NewPostID,
		LocationID:      post.LocationID,
		SupervisorID:    input.NewSupervisorID,
		StartDate:       input.TransferDate,
		AssignmentType:  current.AssignmentType,
		ShiftType:       input.NewShiftType,
		Status:          ResolveInitialStatus(input.RequestedBy.Role),
		RequestedByID:   input.RequestedBy.ID,
		RequestedByRole: input.RequestedBy.Role,
		RequestedByName: input.RequestedBy.DisplayName,
		SupersedesID:    &current.ID,
	}
	if successor.Status == models.AssignmentStatusActive {
		now := time.Now()
		successor.DecidedByID = &input.RequestedBy.ID
		successor.DecidedByRole = input.RequestedBy.Role
		successor.DecidedByName = input.RequestedBy.DisplayName
		successor.DecidedAt = &now
	}

	patch := repository.StatusPatch{
		Status:         models.AssignmentStatusTransferred,
		EndDate:        &input.TransferDate,
		TransferReason: input.Reason,
	}

	override := CanOverrideCapacity(input.RequestedBy.Role)
	if err := s.assignments.TransferGuarded(ctx, current.ID, patch, successor, override); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, input.OperatorID, "Assignment transferred",
		fmt.Sprintf("You have been transferred from post %d to post %d effective %s",
			current.PostID, input.NewPostID, input.TransferDate.Format("2006-01-02")),
		constants.PriorityHigh)
	s.activity.Record(ctx, input.RequestedBy.ID, "assignment.transfer", "assignment", successor.ID, map[string]interface{}{
		"supersedes_id": current.ID,
		"from_post_id":  current.PostID,
		"to_post_id":    input.NewPostID,
		"reason":        input.Reason,
	})

	return successor, nil
}

func validateTransferInput(input TransferInput) error {
	if strings.TrimSpace(input.Reason) == "" {
		return apperrors.InvalidPayload("transfer reason is required")
	}
	if len(input.Reason) > constants.MaxReasonLength {
		return apperrors.InvalidPayload("transfer reason exceeds %d characters", constants.MaxReasonLength)
	}
	if input.TransferDate.IsZero() {
		return apperrors.InvalidPayload("transfer date is required")
	}
	if !input.NewShiftType.Valid() {
		return apperrors.InvalidPayload("invalid shift type %q", input.NewShiftType)
	}
	return nil
}
