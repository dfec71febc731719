package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// ActorHeader carries the opaque caller identity for governance calls.
const ActorHeader = "X-Actor"

const actorKey = "actor"

// RequireActor rejects requests without a usable X-Actor header and stores
// the cleaned value for handlers.
func RequireActor() fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, errMsg := ValidateActor(c.Get(ActorHeader))
		if errMsg != "" {
			return ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// Actor returns the identity stored by RequireActor.
func Actor(c fiber.Ctx) string {
	actor, _ := c.Locals(actorKey).(string)
	return actor
}
