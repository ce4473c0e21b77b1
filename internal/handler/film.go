package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// FilmHandler serves the home screen and the film detail screen.
type FilmHandler struct {
	Films      FilmStore
	Ratings    RatingStore
	People     CreditStore
	Screenings CinemaStore
	Log        *log.Logger

	// Cache and CachePrefix locate the response cache purged after a rating.
	Cache       *redis.Client
	CachePrefix string
}

type filmDetailResp struct {
	model.Film
	model.RatingSummary
	MyRating *int `json:"my_rating,omitempty"`
}

type rateReq struct {
	Star    int     `json:"star" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// List returns the films of one tab with their rating aggregates.
func (h *FilmHandler) List(c echo.Context) error {
	status, ok := model.ParseFilmStatus(c.QueryParam("status"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be now_playing or coming_soon"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Films.ListByStatus(ctx, status)
	if err != nil {
		return serverError(c, "list films failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// film resolves :id as a numeric id or, failing that, a slug.
func (h *FilmHandler) film(ctx context.Context, c echo.Context) (model.Film, error) {
	ref := strings.TrimSpace(c.Param("id"))
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && id > 0 {
		return h.Films.GetByID(ctx, id)
	}
	if ref == "" {
		return model.Film{}, repository.ErrFilmNotFound
	}
	return h.Films.GetBySlug(ctx, strings.ToLower(ref))
}

func filmLookupError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrFilmNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
	}
	return serverError(c, "load film failed")
}

// Get returns the film row with its rating aggregate and, for signed in
// users, their own star rating.
func (h *FilmHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.film(ctx, c)
	if err != nil {
		return filmLookupError(c, err)
	}
	sum, err := h.Ratings.Summary(ctx, f.ID)
	if err != nil {
		return serverError(c, "load rating failed")
	}
	resp := filmDetailResp{Film: f, RatingSummary: sum}
	if uid, ok := middleware.UserID(c); ok {
		r, err := h.Ratings.GetForUser(ctx, f.ID, uid)
		switch {
		case err == nil:
			resp.MyRating = &r.Stars
		case !errors.Is(err, repository.ErrNotFound):
			return serverError(c, "load rating failed")
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Credits returns the directors and actors of a film.
func (h *FilmHandler) Credits(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.film(ctx, c)
	if err != nil {
		return filmLookupError(c, err)
	}
	directors, err := h.People.DirectorsByFilm(ctx, f.ID)
	if err != nil {
		return serverError(c, "load directors failed")
	}
	actors, err := h.People.ActorsByFilm(ctx, f.ID)
	if err != nil {
		return serverError(c, "load actors failed")
	}
	return c.JSON(http.StatusOK, model.Credits{Directors: directors, Actors: actors})
}

// Rate stores the caller's rating for a film, replacing an earlier one, and
// returns the new aggregate.
func (h *FilmHandler) Rate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req rateReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		req.Comment = &trimmed
		if trimmed == "" {
			req.Comment = nil
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.film(ctx, c)
	if err != nil {
		return filmLookupError(c, err)
	}
	if err := h.Ratings.Upsert(ctx, model.Rating{FilmID: f.ID, UserID: uid, Stars: req.Star, Comment: req.Comment}); err != nil {
		return serverError(c, "save rating failed")
	}
	sum, err := h.Ratings.Summary(ctx, f.ID)
	if err != nil {
		return serverError(c, "load rating failed")
	}
	if _, err := middleware.PurgeCache(ctx, h.Cache, h.CachePrefix); err != nil && h.Log != nil {
		h.Log.Warn("cache purge failed", "film", f.ID, "err", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"idfilm":    f.ID,
		"my_rating": req.Star,
		"summary":   sum,
	})
}

// Cinemas lists the cinemas screening a film.
func (h *FilmHandler) Cinemas(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.film(ctx, c)
	if err != nil {
		return filmLookupError(c, err)
	}
	items, err := h.Screenings.ListByFilm(ctx, f.ID)
	if err != nil {
		return serverError(c, "list cinemas failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
