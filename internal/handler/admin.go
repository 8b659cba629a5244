package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/service"
)

// AdminHandler serves the moderation routes.  The router already
// requires an admin session; the service checks again.
type AdminHandler struct {
	Admin *service.AdminService
}

func NewAdminHandler(s *service.AdminService) *AdminHandler {
	return &AdminHandler{Admin: s}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	d, err := h.Admin.Dashboard(c.Request().Context(), session(c))
	if err != nil {
		return fail(c, err, "Failed to fetch dashboard data")
	}
	return c.JSON(http.StatusOK, d)
}

type moderateBody struct {
	Action          string `json:"action"`
	TimeoutDuration int    `json:"timeoutDuration"` // minutes
}

// ModerateUser applies ban, unban, timeout or removeTimeout.
func (h *AdminHandler) ModerateUser(c echo.Context) error {
	var body moderateBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	u, err := h.Admin.ModerateUser(c.Request().Context(), session(c), c.Param("id"), body.Action, body.TimeoutDuration)
	if err != nil {
		return fail(c, err, "Failed to update user")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.Admin.DeleteUser(c.Request().Context(), session(c), c.Param("id")); err != nil {
		return fail(c, err, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AdminHandler) UpdateRequest(c echo.Context) error {
	var body patchRequestBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	r, err := h.Admin.UpdateRequest(c.Request().Context(), session(c), c.Param("id"), body.patch())
	if err != nil {
		return fail(c, err, "Failed to update request")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "request": r})
}

func (h *AdminHandler) DeleteRequest(c echo.Context) error {
	if err := h.Admin.DeleteRequest(c.Request().Context(), session(c), c.Param("id")); err != nil {
		return fail(c, err, "Failed to delete request")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
