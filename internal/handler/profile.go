package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/service"
)

type ProfileHandler struct {
	Profiles *service.ProfileService
}

func NewProfileHandler(s *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: s}
}

func (h *ProfileHandler) Get(c echo.Context) error {
	p, err := h.Profiles.Get(c.Request().Context(), session(c))
	if err != nil {
		return fail(c, err, "Failed to fetch profile")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p})
}

// Update changes the non-empty fields of the body.
func (h *ProfileHandler) Update(c echo.Context) error {
	var body struct {
		Name               string `json:"name" form:"name"`
		RegistrationNumber string `json:"registrationNumber" form:"registrationNumber"`
		PhoneNumber        string `json:"phoneNumber" form:"phoneNumber"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	p, err := h.Profiles.Update(c.Request().Context(), session(c), service.ProfileInput{
		Name:               body.Name,
		RegistrationNumber: body.RegistrationNumber,
		PhoneNumber:        body.PhoneNumber,
	})
	if err != nil {
		return fail(c, err, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p})
}
