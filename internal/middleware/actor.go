package middleware

import (
	"strconv"

	"github.com/fieldops/duty-assignment-api/internal/constants"
	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/fieldops/duty-assignment-api/internal/repository"
	"github.com/fieldops/duty-assignment-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RequireActor resolves the acting supervisor from the X-Actor-ID header and
// stores their identity in the request context. Authenticating that header is
// the host system's job; this only resolves it against the directory.
func RequireActor(persons repository.PersonDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorIDStr := c.GetHeader("X-Actor-ID")
		if actorIDStr == "" {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actorID, err := strconv.ParseUint(actorIDStr, 10, 64)
		if err != nil {
			apperrors.Unauthorized(c, "Invalid actor ID")
			c.Abort()
			return
		}

		supervisor, err := persons.GetSupervisor(c.Request.Context(), actorID)
		if err != nil {
			apperrors.Unauthorized(c, "Unknown actor")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActorID, supervisor.ID)
		c.Set(constants.ContextKeyActorRole, supervisor.Role)
		c.Set(constants.ContextKeyActorName, supervisor.FullName)
		c.Next()
	}
}

// GetActor retrieves the current actor from context
func GetActor(c *gin.Context) (services.Actor, bool) {
	actorID, exists := c.Get(constants.ContextKeyActorID)
	if !exists {
		return services.Actor{}, false
	}
	id, ok := actorID.(uint64)
	if !ok {
		return services.Actor{}, false
	}

	role, _ := c.Get(constants.ContextKeyActorRole)
	name, _ := c.Get(constants.ContextKeyActorName)

	actor := services.Actor{ID: id}
	if r, ok := role.(models.SupervisorRole); ok {
		actor.Role = r
	}
	if n, ok := name.(string); ok {
		actor.DisplayName = n
	}
	return actor, true
}
