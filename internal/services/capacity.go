package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/fieldops/duty-assignment-api/internal/repository"
	"gorm.io/gorm"
)

// Capacity is the outcome of a post capacity check.
type Capacity struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

const (
	ReasonPostNotActive  = "post is not active"
	ReasonPostAtCapacity = "post at capacity"
)

// CapacityGuard determines whether a post has room for another assignment.
type CapacityGuard struct {
	posts       repository.PostDirectory
	assignments repository.AssignmentStore
}

// NewCapacityGuard creates a new CapacityGuard
func NewCapacityGuard(posts repository.PostDirectory, assignments repository.AssignmentStore) *CapacityGuard {
	return &CapacityGuard{
		posts:       posts,
		assignments: assignments,
	}
}

// CheckCapacity resolves the post's headcount against its current ACTIVE
// count. Override-capable roles may exceed the headcount, but an inactive post
// is denied regardless of role. Advisory, like CheckEligible: the store's
// guarded insert re-validates under locks.
func (g *CapacityGuard) CheckCapacity(ctx context.Context, postID uint64, requesterRole models.SupervisorRole) (Capacity, error) {
	post, err := g.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Capacity{}, apperrors.NotFoundf("post %d not found", postID)
		}
		return Capacity{}, fmt.Errorf("failed to resolve post: %w", err)
	}

	if !post.IsActive {
		return Capacity{Allowed: false, Reason: ReasonPostNotActive}, nil
	}

	active, err := g.assignments.CountActiveByPost(ctx, postID)
	if err != nil {
		return Capacity{}, fmt.Errorf("failed to count active assignments: %w", err)
	}

	if active < int64(post.RequiredHeadcount) {
		return Capacity{Allowed: true}, nil
	}
	if CanOverrideCapacity(requesterRole) {
		return Capacity{Allowed: true}, nil
	}

	return Capacity{Allowed: false, Reason: ReasonPostAtCapacity}, nil
}
