package constants

// Context keys
const (
	ContextKeyActorID   = "actor_id"
	ContextKeyActorRole = "actor_role"
	ContextKeyActorName = "actor_name"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field limits
const (
	MaxSpecialInstructionsLength = 2000
	MaxReasonLength              = 500
)

// Notification priorities
const (
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
)
