package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterUser registers the signed-in student endpoints on the
// authenticated /v1 group.  purge runs after writes that change what the
// public feed shows.
func RegisterUser(g *echo.Group, h Handlers, purge echo.MiddlewareFunc) {
	g.POST("/requests", h.Requests.Create, purge)
	g.GET("/my-requests", h.Requests.Mine)
	g.PATCH("/requests/:id", h.Requests.Update, purge)
	g.DELETE("/requests/:id", h.Requests.Delete, purge)
	g.POST("/requests/:id/interest", h.Interests.Record)

	g.GET("/notifications", h.Notifications.List)
	g.PATCH("/notifications", h.Notifications.MarkRead)
	g.POST("/notifications", h.Notifications.MarkAllRead)

	g.POST("/feedback", h.Feedback.Create)
	g.GET("/feedback", h.Feedback.List)

	// owner name and phone number appear in the feed
	g.GET("/profile", h.Profile.Get)
	g.PATCH("/profile", h.Profile.Update, purge)
}
