package services

import (
	"testing"

	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveInitialStatus(t *testing.T) {
	tests := []struct {
		name     string
		role     models.SupervisorRole
		expected models.AssignmentStatus
	}{
		{"frontline supervisor requests pending", models.RoleFrontlineSupervisor, models.AssignmentStatusPending},
		{"general supervisor activates directly", models.RoleGeneralSupervisor, models.AssignmentStatusActive},
		{"manager activates directly", models.RoleManager, models.AssignmentStatusActive},
		{"director activates directly", models.RoleDirector, models.AssignmentStatusActive},
		{"unknown role falls back to pending", models.SupervisorRole("INTERN"), models.AssignmentStatusPending},
		{"empty role falls back to pending", models.SupervisorRole(""), models.AssignmentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveInitialStatus(tt.role))
		})
	}
}

func TestCanDecide(t *testing.T) {
	assert.False(t, CanDecide(models.RoleFrontlineSupervisor))
	assert.True(t, CanDecide(models.RoleGeneralSupervisor))
	assert.True(t, CanDecide(models.RoleManager))
	assert.True(t, CanDecide(models.RoleDirector))
	assert.False(t, CanDecide(models.SupervisorRole("INTERN")))
}

func TestCanOverrideCapacity(t *testing.T) {
	assert.False(t, CanOverrideCapacity(models.RoleFrontlineSupervisor))
	assert.False(t, CanOverrideCapacity(models.RoleGeneralSupervisor))
	assert.True(t, CanOverrideCapacity(models.RoleManager))
	assert.True(t, CanOverrideCapacity(models.RoleDirector))
}
