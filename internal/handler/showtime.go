package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

// ShowtimeHandler serves the showtime picker and the seat map.
type ShowtimeHandler struct {
	Showtimes ShowtimeStore
	Seats     SeatStore
	Location  *time.Location
	Now       func() time.Time
}

// showtimeItem splits the start into the parts the date picker shows.
type showtimeItem struct {
	ID        uint64    `json:"idshowtime"`
	StartsAt  time.Time `json:"starts_at"`
	DateShow  int       `json:"dateshow"`
	MonthShow int       `json:"monthshow"`
	YearShow  int       `json:"yearshow"`
	TimeShow  string    `json:"timeshow"`
}

type showDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (h *ShowtimeHandler) loc() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

func (h *ShowtimeHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func newShowtimeItem(s model.Showtime, loc *time.Location) showtimeItem {
	t := s.StartsAt.In(loc)
	return showtimeItem{
		ID:        s.ID,
		StartsAt:  s.StartsAt,
		DateShow:  t.Day(),
		MonthShow: int(t.Month()),
		YearShow:  t.Year(),
		TimeShow:  t.Format("15:04"),
	}
}

// List returns the upcoming showtimes of a film at a cinema together with
// the distinct dates they fall on.
func (h *ShowtimeHandler) List(c echo.Context) error {
	filmID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	cinemaID, ok := pathID(c, "cinemaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Showtimes.ListByFilmAndCinema(ctx, filmID, cinemaID, h.now())
	if err != nil {
		return serverError(c, "list showtimes failed")
	}
	loc := h.loc()
	items := make([]showtimeItem, 0, len(list))
	dates := make([]showDate, 0)
	seen := make(map[showDate]bool)
	for _, s := range list {
		it := newShowtimeItem(s, loc)
		items = append(items, it)
		d := showDate{Day: it.DateShow, Month: it.MonthShow, Year: it.YearShow}
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "dates": dates})
}

// SeatMap returns the seat grid of a cinema. With ?showtime= the seats sold
// for that showtime are flagged.
func (h *ShowtimeHandler) SeatMap(c echo.Context) error {
	cinemaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	var showtimeID uint64
	if raw := c.QueryParam("showtime"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime"})
		}
		showtimeID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	layout, err := h.Seats.LayoutByCinema(ctx, cinemaID)
	if err != nil {
		if errors.Is(err, repository.ErrLayoutNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat layout not found"})
		}
		return serverError(c, "load layout failed")
	}

	var sold []string
	if showtimeID != 0 {
		st, err := h.Showtimes.GetByID(ctx, showtimeID)
		if err != nil {
			if errors.Is(err, repository.ErrShowtimeNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
			}
			return serverError(c, "load showtime failed")
		}
		if st.CinemaID != cinemaID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime is not at this cinema"})
		}
		if sold, err = h.Seats.SoldSeats(ctx, showtimeID); err != nil {
			return serverError(c, "load sold seats failed")
		}
	}
	return c.JSON(http.StatusOK, service.BuildSeatMap(layout, showtimeID, sold))
}

// PaymentMethods lists the wallets accepted by POST /v1/orders.
func PaymentMethods(c echo.Context) error {
	return c.JSON(http.StatusOK, model.PaymentMethods)
}
