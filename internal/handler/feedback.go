package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/service"
)

type FeedbackHandler struct {
	Feedback *service.FeedbackService
}

func NewFeedbackHandler(s *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{Feedback: s}
}

func (h *FeedbackHandler) Create(c echo.Context) error {
	var body struct {
		Subject string `json:"subject" form:"subject"`
		Message string `json:"message" form:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	f, err := h.Feedback.Create(c.Request().Context(), session(c), body.Subject, body.Message)
	if err != nil {
		return fail(c, err, "Failed to submit feedback")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "feedback": f})
}

// List returns all feedback to admins and the caller's own otherwise.
func (h *FeedbackHandler) List(c echo.Context) error {
	items, err := h.Feedback.List(c.Request().Context(), session(c))
	if err != nil {
		return fail(c, err, "Failed to fetch feedback")
	}
	return c.JSON(http.StatusOK, echo.Map{"feedbacks": items})
}

func (h *FeedbackHandler) SetStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	f, err := h.Feedback.SetStatus(c.Request().Context(), session(c), c.Param("id"), body.Status)
	if err != nil {
		return fail(c, err, "Failed to update feedback")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "feedback": f})
}

func (h *FeedbackHandler) Delete(c echo.Context) error {
	if err := h.Feedback.Delete(c.Request().Context(), session(c), c.Param("id")); err != nil {
		return fail(c, err, "Failed to delete feedback")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
