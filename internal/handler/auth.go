package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/config"
	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
	"github.com/shiftbuddy/hostel-swap/internal/utils"
	"github.com/shiftbuddy/hostel-swap/internal/validation"
)

// maxAuthBody bounds the registration payload read before validation.
const maxAuthBody = 64 << 10

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  repository.UserStore
	Tokens repository.TokenStore
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, t repository.TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	RegistrationNumber string `json:"registrationNumber"`
	Password           string `json:"password"`
}
type loginReq struct {
	RegistrationNumber string `json:"registrationNumber" form:"registrationNumber"`
	Password           string `json:"password" form:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.UserProfile `json:"user"`
	Access  tokenPart         `json:"access"`
	Refresh tokenPart         `json:"refresh"`
}

// Register validates the payload against the registration schema and
// creates a credential account.  No tokens are issued; clients log in
// afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAuthBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	body = validation.TrimFields(body, "name", "email", "registrationNumber")
	if err := validation.ValidateRegistration(ctx, body); err != nil {
		var ve *validation.Error
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
		}
		logger.Error("registration schema failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
	}
	var req registerReq
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	reg := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		logger.Error("hash password failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
	}

	u := model.User{Name: &name, Email: &email, RegistrationNumber: &reg, PasswordHash: &hash}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User with this registration number or email already exists"})
		}
		logger.Error("create user failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u.Profile()})
}

// Login verifies registration number and password and returns a new
// token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	reg := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	if reg == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing registrationNumber or password"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByRegistrationNumber(ctx, reg)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		logger.Error("load user failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.PasswordHash == nil || !utils.VerifyPassword(*u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if u.IsBanned {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Your account has been banned"})
	}
	return h.issue(ctx, c, u, http.StatusOK)
}

// Refresh validates a refresh token by hash, revokes it and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		logger.Warn("revoke refresh failed", slog.String("user_id", userID), slog.Any("err", err))
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		logger.Error("load user failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if u.IsBanned {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Your account has been banned"})
	}
	return h.issue(ctx, c, u, http.StatusOK)
}

func (h *AuthHandler) issue(ctx context.Context, c echo.Context, u model.User, status int) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.IsAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		logger.Error("store refresh failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		User:    u.Profile(),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Logout revokes one refresh token when the body names it, or every
// refresh token of the bearer when only an access token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		uid, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}
