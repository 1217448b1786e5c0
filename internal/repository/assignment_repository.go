package repository

import (
	"context"
	"errors"

	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentStore is a GORM implementation of AssignmentStore
type GormAssignmentStore struct {
	db *gorm.DB
}

// NewAssignmentStore creates a new AssignmentStore
func NewAssignmentStore(db *gorm.DB) AssignmentStore {
	return &GormAssignmentStore{db: db}
}

// forUpdate applies a FOR UPDATE row lock where the dialect supports it.
// SQLite (used by the test suites) has a single writer and rejects the clause.
func (r *GormAssignmentStore) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindByID finds an assignment by ID with optional preloading
func (r *GormAssignmentStore) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Assignment, error) {
	var assignment models.Assignment
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&assignment, id).Error; err != nil {
		return nil, err
	}

	return &assignment, nil
}

// FindLiveByOperator returns the operator's PENDING or ACTIVE assignment
func (r *GormAssignmentStore) FindLiveByOperator(ctx context.Context, operatorID uint64) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status IN ?", operatorID, models.LiveStatuses).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CountActiveByPost counts ACTIVE assignments for a post
func (r *GormAssignmentStore) CountActiveByPost(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("post_id = ? AND status = ?", postID, models.AssignmentStatusActive).
		Count(&count).Error
	return count, err
}

// CreateGuarded inserts the assignment inside one transaction that re-validates
// the one-live-assignment rule and the post capacity immediately before the
// write. The operator and post rows are locked first, which serializes
// concurrent creates per operator and per post.
func (r *GormAssignmentStore) CreateGuarded(ctx context.Context, a *models.Assignment, overrideCapacity bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var operator models.Operator
		if err := r.forUpdate(tx).First(&operator, a.OperatorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("operator %d not found", a.OperatorID)
			}
			return err
		}

		var post models.Post
		if err := r.forUpdate(tx).First(&post, a.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("post %d not found", a.PostID)
			}
			return err
		}

		if err := guardInsert(tx, a, &post, overrideCapacity); err != nil {
			return err
		}

		return tx.Create(a).Error
	})
}

// UpdateStatus applies the patch conditional on the current status. Zero rows
// affected means either another writer got there first or the id never
// existed; a re-read tells the two apart.
func (r *GormAssignmentStore) UpdateStatus(ctx context.Context, id uint64, patch StatusPatch, expected models.AssignmentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(patchColumns(patch))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).
			Model(&models.Assignment{}).
			Where("id = ?", id).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.NotFoundf("assignment %d not found", id)
		}
		return apperrors.ConcurrencyConflict("assignment %d is no longer %s", id, expected)
	}
	return nil
}

// ActivateGuarded promotes a PENDING assignment to ACTIVE with the capacity
// re-count and the status write in the same transaction, under a lock on the
// post row. Without the lock two approvals on a nearly-full post could both
// count below the headcount and both commit.
func (r *GormAssignmentStore) ActivateGuarded(ctx context.Context, id uint64, patch StatusPatch, overrideCapacity bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := r.forUpdate(tx).First(&assignment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("assignment %d not found", id)
			}
			return err
		}
		if assignment.Status != models.AssignmentStatusPending {
			return apperrors.ConcurrencyConflict("assignment %d is no longer %s", id, models.AssignmentStatusPending)
		}

		var post models.Post
		if err := r.forUpdate(tx).First(&post, assignment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("post %d not found", assignment.PostID)
			}
			return err
		}

		if !post.IsActive {
			return apperrors.PostUnavailable("post %d is not active", post.ID)
		}
		if !overrideCapacity {
			var active int64
			err := tx.Model(&models.Assignment{}).
				Where("post_id = ? AND status = ?", post.ID, models.AssignmentStatusActive).
				Count(&active).Error
			if err != nil {
				return err
			}
			if active >= int64(post.RequiredHeadcount) {
				return apperrors.PostUnavailable("post at capacity")
			}
		}

		result := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", id, models.AssignmentStatusPending).
			Updates(patchColumns(patch))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ConcurrencyConflict("assignment %d is no longer %s", id, models.AssignmentStatusPending)
		}
		return nil
	})
}

// TransferGuarded ends the current assignment and inserts its successor as one
// unit of work. If the successor cannot be created the TRANSFERRED mark is
// rolled back and the current assignment stays ACTIVE.
func (r *GormAssignmentStore) TransferGuarded(ctx context.Context, currentID uint64, patch StatusPatch, successor *models.Assignment, overrideCapacity bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", currentID, models.AssignmentStatusActive).
			Updates(patchColumns(patch))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ConcurrencyConflict("assignment %d is no longer %s", currentID, models.AssignmentStatusActive)
		}

		var post models.Post
		if err := r.forUpdate(tx).First(&post, successor.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("post %d not found", successor.PostID)
			}
			return err
		}

		if err := guardInsert(tx, successor, &post, overrideCapacity); err != nil {
			return err
		}

		return tx.Create(successor).Error
	})
}

// List retrieves assignments with filtering and pagination
func (r *GormAssignmentStore) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	var assignments []models.Assignment

	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.OperatorID != nil {
		query = query.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.PostID != nil {
		query = query.Where("post_id = ?", *filter.PostID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("assignments.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Operator").Preload("Post").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// guardInsert re-validates, under the row locks taken by the caller, that the
// assignment may be inserted: no live assignment for the operator, post still
// active, and headcount not exceeded unless the requester may override it.
func guardInsert(tx *gorm.DB, a *models.Assignment, post *models.Post, overrideCapacity bool) error {
	var live int64
	err := tx.Model(&models.Assignment{}).
		Where("operator_id = ? AND status IN ?", a.OperatorID, models.LiveStatuses).
		Count(&live).Error
	if err != nil {
		return err
	}
	if live > 0 {
		return apperrors.NotEligible("operator already has a live assignment")
	}

	if !post.IsActive {
		return apperrors.PostUnavailable("post %d is not active", post.ID)
	}

	if !overrideCapacity {
		var active int64
		err := tx.Model(&models.Assignment{}).
			Where("post_id = ? AND status = ?", post.ID, models.AssignmentStatusActive).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active >= int64(post.RequiredHeadcount) {
			return apperrors.PostUnavailable("post at capacity")
		}
	}

	return nil
}

// patchColumns builds the column map for a conditional status update. Only
// fields the patch actually sets are written.
func patchColumns(patch StatusPatch) map[string]interface{} {
	columns := map[string]interface{}{
		"status": patch.Status,
	}
	if patch.EndDate != nil {
		columns["end_date"] = *patch.EndDate
	}
	if patch.DecidedByID != nil {
		columns["decided_by_id"] = *patch.DecidedByID
		columns["decided_by_role"] = patch.DecidedByRole
		columns["decided_by_name"] = patch.DecidedByName
	}
	if patch.DecidedAt != nil {
		columns["decided_at"] = *patch.DecidedAt
	}
	if patch.RejectionReason != "" {
		columns["rejection_reason"] = patch.RejectionReason
	}
	if patch.TransferReason != "" {
		columns["transfer_reason"] = patch.TransferReason
	}
	if patch.SpecialInstructions != nil {
		columns["special_instructions"] = *patch.SpecialInstructions
	}
	return columns
}
