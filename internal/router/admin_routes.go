package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/middleware"
)

// RegisterAdmin registers the moderation endpoints.  All routes require
// an admin session.
func RegisterAdmin(g *echo.Group, h Handlers, purge echo.MiddlewareFunc) {
	admin := middleware.RequireAdmin()

	g.PATCH("/feedback/:id", h.Feedback.SetStatus, admin)
	g.DELETE("/feedback/:id", h.Feedback.Delete, admin)

	a := g.Group("/admin", admin)
	a.GET("/dashboard", h.Admin.Dashboard)
	a.PATCH("/requests/:id", h.Admin.UpdateRequest, purge)
	a.DELETE("/requests/:id", h.Admin.DeleteRequest, purge)
	a.PATCH("/users/:id", h.Admin.ModerateUser)
	a.DELETE("/users/:id", h.Admin.DeleteUser, purge)
}
