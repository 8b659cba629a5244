package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// LoadSession loads the user named by the token subject and stores a
// fresh *model.Session on the context.  Moderation is enforced here:
// banned users are rejected on every route and users inside an active
// timeout may only use safe methods.  now may be nil.
func LoadSession(users repository.UserStore, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(userIDKey).(string)
			if id == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			u, err := users.GetByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
				}
				logger.Error("load session failed", slog.String("user_id", id), slog.Any("err", err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
			}
			if u.IsBanned {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Your account has been banned"})
			}
			if u.TimedOut(now()) && !safeMethod(c.Request().Method) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":        "Your account is temporarily restricted",
					"timeoutUntil": u.TimeoutUntil.UTC().Format(time.RFC3339),
				})
			}
			SetSession(c, model.NewSession(u))
			return next(c)
		}
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
