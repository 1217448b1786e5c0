package repository

import (
	"context"
	"time"

	"github.com/fieldops/duty-assignment-api/internal/models"
)

// PersonDirectory resolves operator and supervisor identities. The assignment
// engine only reads through it; lifecycle of the records themselves belongs to
// the host system.
type PersonDirectory interface {
	// GetOperator finds an operator by ID
	GetOperator(ctx context.Context, id uint64) (*models.Operator, error)

	// GetSupervisor finds a supervisor by ID
	GetSupervisor(ctx context.Context, id uint64) (*models.Supervisor, error)
}

// PostDirectory resolves duty posts and their configured capacity.
type PostDirectory interface {
	// GetPost finds a post by ID
	GetPost(ctx context.Context, id uint64) (*models.Post, error)

	// ListPosts lists posts, optionally only active ones
	ListPosts(ctx context.Context, activeOnly bool) ([]models.Post, error)
}

// StatusPatch carries the fields a status transition is allowed to touch.
// Nil pointers / empty strings are left unchanged.
type StatusPatch struct {
	Status              models.AssignmentStatus
	EndDate             *time.Time
	DecidedByID         *uint64
	DecidedByRole       models.SupervisorRole
	DecidedByName       string
	DecidedAt           *time.Time
	RejectionReason     string
	TransferReason      string
	SpecialInstructions *string
}

// AssignmentFilter holds filtering options for listing assignments
type AssignmentFilter struct {
	OperatorID *uint64
	PostID     *uint64
	Status     *models.AssignmentStatus
	Page       int
	PageSize   int
}

// AssignmentStore is the single source of truth for assignment state. All
// writes go through the conditional methods so the engine's invariants hold
// under concurrent callers.
type AssignmentStore interface {
	// FindByID finds an assignment by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Assignment, error)

	// FindLiveByOperator returns the operator's PENDING or ACTIVE assignment,
	// or gorm.ErrRecordNotFound when there is none
	FindLiveByOperator(ctx context.Context, operatorID uint64) (*models.Assignment, error)

	// CountActiveByPost counts ACTIVE assignments for a post
	CountActiveByPost(ctx context.Context, postID uint64) (int64, error)

	// CreateGuarded inserts the assignment after re-validating, inside one
	// transaction, that the operator has no live assignment and that the post
	// is active and below headcount (unless overrideCapacity)
	CreateGuarded(ctx context.Context, a *models.Assignment, overrideCapacity bool) error

	// UpdateStatus applies the patch conditional on the assignment still being
	// in the expected status; losing that race yields a concurrency conflict
	UpdateStatus(ctx context.Context, id uint64, patch StatusPatch, expected models.AssignmentStatus) error

	// ActivateGuarded transitions a PENDING assignment to ACTIVE, holding the
	// post row lock while it re-counts capacity, so concurrent approvals
	// cannot both slip under the headcount
	ActivateGuarded(ctx context.Context, id uint64, patch StatusPatch, overrideCapacity bool) error

	// TransferGuarded marks the current assignment TRANSFERRED and inserts its
	// successor as one unit of work; any failure rolls both back
	TransferGuarded(ctx context.Context, currentID uint64, patch StatusPatch, successor *models.Assignment, overrideCapacity bool) error

	// List retrieves assignments with filtering and pagination
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)
}
