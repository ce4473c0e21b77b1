package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user id stored by JWTAuth or OptionalJWT.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok && id != 0
}

// identityKey is the user id as a string, or "anon" for guests. Used in
// rate limit keys.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
