package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/shiftbuddy/hostel-swap/internal/config"
	"github.com/shiftbuddy/hostel-swap/internal/handler"
	"github.com/shiftbuddy/hostel-swap/internal/middleware"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// FeedScope is the cache scope of the public request feed.  Every write
// that can change the feed purges it.
const FeedScope = "feed"

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth          *handler.AuthHandler
	Requests      *handler.RequestHandler
	Interests     *handler.InterestHandler
	Notifications *handler.NotificationHandler
	Feedback      *handler.FeedbackHandler
	Admin         *handler.AdminHandler
	Profile       *handler.ProfileHandler
}

// Options carries what the route middleware needs.  Redis may be nil,
// which turns caching off.
type Options struct {
	JWTSecret string
	Users     repository.UserStore
	Cache     config.CacheConfig
	Redis     *redis.Client
}

// Register mounts every route on e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	RegisterRoutes(e)
	RegisterAuth(e, h.Auth)

	// Authenticated routes load a fresh session, which also enforces bans
	// and timeouts.
	auth := e.Group("/v1",
		middleware.JWTAuth(opt.JWTSecret),
		middleware.LoadSession(opt.Users, nil),
	)
	purge := middleware.PurgeOnWrite(opt.Cache, opt.Redis, FeedScope)

	e.GET("/v1/requests", h.Requests.List, middleware.NewRedisCache(opt.Cache, opt.Redis, FeedScope))
	RegisterUser(auth, h, purge)
	RegisterAdmin(auth, h, purge)
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints under /v1/auth.  None of
// them requires an existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
