package services

import "github.com/fieldops/duty-assignment-api/internal/models"

// Actor identifies who is performing an operation.
type Actor struct {
	ID          uint64
	Role        models.SupervisorRole
	DisplayName string
}

// initialStatusByRole is the only place role-to-authority policy lives.
// Elevated roles activate assignments immediately; everything else (including
// front-line supervisors and unknown roles) defers to an approval step.
var initialStatusByRole = map[models.SupervisorRole]models.AssignmentStatus{
	models.RoleFrontlineSupervisor: models.AssignmentStatusPending,
	models.RoleGeneralSupervisor:   models.AssignmentStatusActive,
	models.RoleManager:             models.AssignmentStatusActive,
	models.RoleDirector:            models.AssignmentStatusActive,
}

// ResolveInitialStatus maps the requester's role to the status a freshly
// created assignment starts in.
func ResolveInitialStatus(role models.SupervisorRole) models.AssignmentStatus {
	if status, ok := initialStatusByRole[role]; ok {
		return status
	}
	return models.AssignmentStatusPending
}

// CanDecide reports whether the role may approve or reject a pending
// assignment. Decision authority coincides with auto-activation authority.
func CanDecide(role models.SupervisorRole) bool {
	return ResolveInitialStatus(role) == models.AssignmentStatusActive
}

// capacityOverrideRoles are the two highest-authority roles, permitted to
// exceed a post's configured headcount.
var capacityOverrideRoles = map[models.SupervisorRole]struct{}{
	models.RoleManager:  {},
	models.RoleDirector: {},
}

// CanOverrideCapacity reports whether the role may exceed a post's headcount.
func CanOverrideCapacity(role models.SupervisorRole) bool {
	_, ok := capacityOverrideRoles[role]
	return ok
}
