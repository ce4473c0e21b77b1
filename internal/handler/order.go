package handler

import (
	"context"  // request timeout
	"errors"   // errors.As on booking errors
	"net/http" // HTTP status codes
	"time"     // display zone for the ticket

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/cinebook/internal/repository" // not found sentinels
	"github.com/iliyamo/cinebook/internal/service"    // booking flow
)

// OrderHandler accepts seat purchases.
type OrderHandler struct {
	Orders   OrderPlacer    // booking service
	Location *time.Location // zone used to render showtime dates
}

type orderReq struct {
	FilmID        uint64   `json:"idfilm" validate:"required"`
	CinemaID      uint64   `json:"idcinema" validate:"required"`
	ShowtimeID    uint64   `json:"idshowtime" validate:"required"`
	Seats         []string `json:"seats"` // labels such as A1; validated against the layout
	PaymentMethod string   `json:"payment_method" validate:"required"`
	ClientToken   string   `json:"client_token" validate:"omitempty,max=64"` // double submit guard, optional
}

// Create places an order. A repeated client_token answers 200 with the
// earlier order instead of 201.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req orderReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Orders.PlaceOrder(ctx, service.OrderRequest{
		UserID:        uid,
		FilmID:        req.FilmID,
		CinemaID:      req.CinemaID,
		ShowtimeID:    req.ShowtimeID,
		Seats:         req.Seats,
		PaymentMethod: req.PaymentMethod,
		ClientToken:   req.ClientToken,
	})
	if err != nil {
		return orderError(c, err)
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, newTicketView(res.Ticket, h.Location))
}

func orderError(c echo.Context, err error) error {
	var invalid *service.InvalidSeatsError
	var taken *service.SeatsTakenError
	switch {
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seats", "invalid": invalid.Seats})
	case errors.As(err, &taken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats already sold", "taken": taken.Seats})
	case errors.Is(err, repository.ErrSeatTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats already sold"})
	case errors.Is(err, service.ErrNoSeats),
		errors.Is(err, service.ErrUnknownPaymentMethod),
		errors.Is(err, service.ErrShowtimeMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrShowtimeStarted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrFilmNotFound),
		errors.Is(err, repository.ErrCinemaNotFound),
		errors.Is(err, repository.ErrShowtimeNotFound),
		errors.Is(err, repository.ErrLayoutNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	return serverError(c, "place order failed")
}
