package handler

import (
	"context"  // request scoped timeouts for DB calls
	"errors"   // errors.Is on repository sentinels
	"net/http" // HTTP status codes
	"strings"  // trimming and bearer prefix handling
	"time"     // token expiry and timeouts

	"github.com/charmbracelet/log" // structured logger
	"github.com/labstack/echo/v4"  // Echo framework for HTTP routing

	"github.com/iliyamo/cinebook/internal/config"     // app configuration
	"github.com/iliyamo/cinebook/internal/model"      // user and session types
	"github.com/iliyamo/cinebook/internal/repository" // DB repositories
	"github.com/iliyamo/cinebook/internal/service"    // session cache
	"github.com/iliyamo/cinebook/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for the sign up / sign in endpoints.
type AuthHandler struct {
	Cfg      config.Config        // JWT secret, token TTLs, bcrypt cost
	Users    UserStore            // users table
	Tokens   TokenStore           // refresh_tokens table
	Sessions service.SessionStore // cached session rows
	Log      *log.Logger          // never nil
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, s service.SessionStore, logger *log.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Sessions: s, Log: logger}
}

// ----- DTOs -----

type registerReq struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email,max=190"`
	PhoneNumber string `json:"phonenumber" validate:"omitempty,max=32"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *registerReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = repository.NormalizeEmail(r.Email)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *loginReq) normalize() { r.Email = repository.NormalizeEmail(r.Email) }

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.SessionUser `json:"user"`
	Access  tokenPart         `json:"access"`
	Refresh tokenPart         `json:"refresh"`
}

// issue creates a token pair for u and caches its session row.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	sess := u.Session()
	if err := h.Sessions.Put(ctx, sess); err != nil {
		h.Log.Warn("session cache write failed", "user", u.ID, "err", err)
	}
	return authResp{
		User:    sess,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a customer account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return serverError(c, "hash password failed")
	}
	u := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
	}
	u.ID, err = h.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return serverError(c, "create user failed")
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return serverError(c, "issue tokens failed")
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return serverError(c, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return serverError(c, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
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
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return serverError(c, "load user failed")
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return serverError(c, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or every token of the
// bearer's user when no body token is given, and clears the session cache.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid = claims.UserID
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		owner, err := h.Tokens.ValidateRefresh(ctx, hash)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return serverError(c, "logout failed")
		}
		uid = owner
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return serverError(c, "logout failed")
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}

	if err := h.Sessions.Delete(ctx, uid); err != nil {
		h.Log.Warn("session cache delete failed", "user", uid, "err", err)
	}
	return c.NoContent(http.StatusNoContent)
}
