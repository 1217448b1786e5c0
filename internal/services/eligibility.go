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

// Eligibility is the outcome of a pre-flight "can I assign this operator"
// check.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

const (
	ReasonOperatorNotActive = "operator not active"
	ReasonAlreadyAssigned   = "operator already has a live assignment"
)

// EligibilityValidator determines whether an operator may receive a new
// assignment.
type EligibilityValidator struct {
	persons     repository.PersonDirectory
	assignments repository.AssignmentStore
}

// NewEligibilityValidator creates a new EligibilityValidator
func NewEligibilityValidator(persons repository.PersonDirectory, assignments repository.AssignmentStore) *EligibilityValidator {
	return &EligibilityValidator{
		persons:     persons,
		assignments: assignments,
	}
}

// CheckEligible evaluates the eligibility rules in order; the first failure
// wins. The result is advisory: the binding check happens again inside the
// store's guarded insert.
func (v *EligibilityValidator) CheckEligible(ctx context.Context, operatorID uint64) (Eligibility, error) {
	operator, err := v.persons.GetOperator(ctx, operatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Eligibility{}, apperrors.NotFoundf("operator %d not found", operatorID)
		}
		return Eligibility{}, fmt.Errorf("failed to resolve operator: %w", err)
	}

	if operator.EmploymentStatus != models.EmploymentActive {
		return Eligibility{Eligible: false, Reason: ReasonOperatorNotActive}, nil
	}

	_, err = v.assignments.FindLiveByOperator(ctx, operatorID)
	if err == nil {
		return Eligibility{Eligible: false, Reason: ReasonAlreadyAssigned}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Eligibility{}, fmt.Errorf("failed to look up live assignment: %w", err)
	}

	return Eligibility{Eligible: true}, nil
}
