package middleware

// identity.go holds the helpers that move the caller's identity through
// the Echo context.  JWTAuth stores the token subject under "user_id";
// LoadSession replaces it with a *model.Session under "session".

import (
	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/model"
)

const (
	userIDKey  = "user_id"
	sessionKey = "session"
)

// SessionFrom returns the session stored by LoadSession, or nil for
// anonymous requests.
func SessionFrom(c echo.Context) *model.Session {
	s, _ := c.Get(sessionKey).(*model.Session)
	return s
}

// SetSession stores s on the context.  Handlers under test use it to
// skip the token middleware.
func SetSession(c echo.Context, s *model.Session) {
	c.Set(sessionKey, s)
	if s != nil {
		c.Set(userIDKey, s.UserID)
	}
}

// userID returns the authenticated user's id, or "anon".
func userID(c echo.Context) string {
	if s := SessionFrom(c); s != nil && s.UserID != "" {
		return s.UserID
	}
	if v, ok := c.Get(userIDKey).(string); ok && v != "" {
		return v
	}
	return "anon"
}
