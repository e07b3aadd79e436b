package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// RequireRole returns a middleware that enforces that the authenticated
// user carries one of the given workflow roles.  It assumes JWTAuth has
// stored the role claim under the context key "role"; requests with a
// missing or disallowed role are rejected with 403 Forbidden.
func RequireRole(roles ...workflow.Role) echo.MiddlewareFunc {
	allowed := make(map[workflow.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := c.Get("role").(string)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			role, ok := workflow.ParseRole(s)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
