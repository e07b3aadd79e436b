package middleware

// identity.go holds helpers shared across the middleware files for
// identifying the current principal.  JWTAuth stores the subject under
// "user_id" as uint64; the rate limiter and cache need it as a string
// key segment and must tolerate unauthenticated requests.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string, or
// "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
		return strconv.FormatUint(v, 10)
	}
	return "anon"
}
