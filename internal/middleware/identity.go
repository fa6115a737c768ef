package middleware

import "github.com/labstack/echo/v4"

// ActorEmail returns the authenticated email stored by JWTAuth, or "" when
// the request carries no token.
func ActorEmail(c echo.Context) string {
	s, _ := c.Get(ContextEmail).(string)
	return s
}
