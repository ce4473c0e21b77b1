package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
	"github.com/iliyamo/cinebook/internal/utils"
)

// ProfileHandler serves the profile screen. Every read of the user row
// overwrites the session cache entry.
type ProfileHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions service.SessionStore
	Log      *log.Logger
}

func NewProfileHandler(cfg config.Config, u UserStore, s service.SessionStore, logger *log.Logger) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: u, Sessions: s, Log: logger}
}

func (h *ProfileHandler) reload(ctx context.Context, c echo.Context, uid uint64) error {
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return serverError(c, "load user failed")
	}
	sess := u.Session()
	if err := h.Sessions.Put(ctx, sess); err != nil {
		h.Log.Warn("session cache write failed", "user", uid, "err", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Me reloads the user row, refreshes the cache and returns it.
func (h *ProfileHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	return h.reload(ctx, c, uid)
}

// Session returns the cached row without touching the database.
func (h *ProfileHandler) Session(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	sess, err := h.Sessions.Get(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no session"})
		}
		return serverError(c, "session lookup failed")
	}
	return c.JSON(http.StatusOK, sess)
}

type profileReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	PhoneNumber *string `json:"phonenumber" validate:"omitempty,max=32"`
	Email       *string `json:"email" validate:"omitempty,email,max=190"`
	Password    *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// normalize trims the text fields that were sent; a blank name stays blank
// so Update can reject it.
func (r *profileReq) normalize() {
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
	if r.PhoneNumber != nil {
		p := strings.TrimSpace(*r.PhoneNumber)
		r.PhoneNumber = &p
	}
	if r.Email != nil {
		e := repository.NormalizeEmail(*r.Email)
		r.Email = &e
	}
}

// Update changes only the fields present in the body and returns the
// reloaded row.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	upd := model.ProfileUpdate{Name: req.Name, PhoneNumber: req.PhoneNumber, Email: req.Email}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be blank"})
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return serverError(c, "hash password failed")
		}
		upd.PasswordHash = &hash
	}
	if upd.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, uid, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return serverError(c, "update failed")
	}
	return h.reload(ctx, c, uid)
}
