package middleware // middleware holds the echo middleware shared by the /v1 routes

import (
	"net/http" // 401 responses
	"strings"  // Bearer prefix

	"github.com/labstack/echo/v4" // middleware signature

	"github.com/iliyamo/cinebook/internal/utils" // access token parsing
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id" // uint64
	CtxRole   = "role"    // string
)

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// JWTAuth validates a Bearer access token and stores the user id and role
// in the context. Requests without a valid token get 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// OptionalJWT is JWTAuth for public routes that personalise their answer:
// a valid token sets the identity, anything else continues as a guest.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					c.Set(CtxUserID, claims.UserID)
					c.Set(CtxRole, claims.Role)
				}
			}
			return next(c)
		}
	}
}
