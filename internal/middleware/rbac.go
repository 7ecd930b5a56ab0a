package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

const actorLocalKey = "actor"

// ActorResolver loads the resolved actor for an authenticated subject id.
type ActorResolver interface {
	Resolve(ctx context.Context, actorID string) (authz.Actor, error)
}

// ResolveActor exchanges the JWT subject id for a stored actor profile and
// binds it to the request. Requests without a resolvable profile are
// rejected: token claims alone never establish an identity.
func ResolveActor(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, _ := c.Locals("actor_id").(string)
		if actorID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		actor, err := resolver.Resolve(c.UserContext(), actorID)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(actorLocalKey, actor)
		return c.Next()
	}
}

// ActorFromContext returns the resolved actor bound to the request, if any.
func ActorFromContext(c *fiber.Ctx) authz.Actor {
	if value := c.Locals(actorLocalKey); value != nil {
		if actor, ok := value.(authz.Actor); ok {
			return actor
		}
	}
	return authz.Actor{}
}

// RequireRole ensures the resolved actor holds one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[actor.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
