package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/service"
)

type InterestHandler struct {
	Interests *service.InterestService
}

func NewInterestHandler(s *service.InterestService) *InterestHandler {
	return &InterestHandler{Interests: s}
}

// Record registers the caller's interest in a request.  Repeating it is
// not an error.
func (h *InterestHandler) Record(c echo.Context) error {
	res, err := h.Interests.Record(c.Request().Context(), session(c), c.Param("id"))
	if err != nil {
		return fail(c, err, "Failed to record interest")
	}
	if !res.Created {
		return c.JSON(http.StatusOK, echo.Map{"message": "Interest already recorded"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}
