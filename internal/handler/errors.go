package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/middleware"
	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/service"
)

// package-level logger used by handlers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the handler package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrLimitExceeded),
		errors.Is(err, service.ErrPreconditionFailed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": msg}.  Internal errors are logged and
// answered with fallback so that no driver detail reaches the client.
func fail(c echo.Context, err error, fallback string) error {
	status, msg := classify(c, err, fallback)
	return c.JSON(status, echo.Map{"error": msg})
}

// failRequest is fail for the request routes, which also carry ok:false.
func failRequest(c echo.Context, err error, fallback string) error {
	status, msg := classify(c, err, fallback)
	return c.JSON(status, echo.Map{"ok": false, "error": msg})
}

func classify(c echo.Context, err error, fallback string) (int, string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback,
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("err", err))
		return status, fallback
	}
	return status, service.Message(err, http.StatusText(status))
}

func session(c echo.Context) *model.Session {
	return middleware.SessionFrom(c)
}
