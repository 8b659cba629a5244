package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/service"
)

type NotificationHandler struct {
	Notifications *service.NotificationService
}

func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: s}
}

func (h *NotificationHandler) List(c echo.Context) error {
	out, err := h.Notifications.List(c.Request().Context(), session(c))
	if err != nil {
		return fail(c, err, "Failed to fetch notifications")
	}
	return c.JSON(http.StatusOK, out)
}

// MarkRead marks the notification named in the body read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	var body struct {
		NotificationID string `json:"notificationId" form:"notificationId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := h.Notifications.MarkRead(c.Request().Context(), session(c), body.NotificationID); err != nil {
		return fail(c, err, "Failed to update notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.Notifications.MarkAllRead(c.Request().Context(), session(c)); err != nil {
		return fail(c, err, "Failed to update notifications")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
