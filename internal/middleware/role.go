package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose token role is not one of roles. It
// expects JWTAuth to have run; an empty secret disables both.
func RequireRole(secret string, roles ...string) echo.MiddlewareFunc {
	if secret == "" {
		return passthrough
	}
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// AdminOnly is JWTAuth followed by RequireRole("ADMIN").
func AdminOnly(secret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{JWTAuth(secret), RequireRole(secret, "ADMIN")}
}
