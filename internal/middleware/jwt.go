package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/shiftbuddy/hostel-swap/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the token's subject under "user_id".  The provided secret must match
// the one used when issuing tokens.  No other claim is trusted: LoadSession
// re-reads the user from the database.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			sub, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(userIDKey, sub)
			return next(c)
		}
	}
}
