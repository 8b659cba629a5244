package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/shiftbuddy/hostel-swap/internal/config"
	"github.com/shiftbuddy/hostel-swap/internal/database"
	"github.com/shiftbuddy/hostel-swap/internal/handler"
	"github.com/shiftbuddy/hostel-swap/internal/middleware"
	"github.com/shiftbuddy/hostel-swap/internal/queue"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
	"github.com/shiftbuddy/hostel-swap/internal/router"
	"github.com/shiftbuddy/hostel-swap/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	level := slog.LevelDebug
	if cfg.IsProd() {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	handler.SetLogger(logger)
	middleware.SetLogger(logger)
	service.SetLogger(logger)
	queue.SetLogger(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// nil when Redis is unreachable; cache and rate limit then pass through
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	requests := repository.NewRequestRepo(db)

	var events service.EventPublisher
	var wg sync.WaitGroup
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventLogDir)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", slog.Any("err", err))
			}
		}()
	}

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(*cfg, users, repository.NewTokenRepo(db)),
		Requests:      handler.NewRequestHandler(service.NewRequestService(requests)),
		Interests:     handler.NewInterestHandler(service.NewInterestService(requests, repository.NewInterestRepo(db), events)),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(repository.NewNotificationRepo(db))),
		Feedback:      handler.NewFeedbackHandler(service.NewFeedbackService(repository.NewFeedbackRepo(db))),
		Admin:         handler.NewAdminHandler(service.NewAdminService(users, requests, events)),
		Profile:       handler.NewProfileHandler(service.NewProfileService(users)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.Register(e, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		Users:     users,
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	logger.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		stop()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if serr := e.Shutdown(shutdownCtx); serr != nil {
		logger.Error("shutdown failed", slog.Any("err", serr))
	}
	wg.Wait()
	return err
}
