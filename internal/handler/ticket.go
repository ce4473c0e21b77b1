package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/utils" // VND formatting and QR rendering
)

// TicketHandler serves the ticket list, the ticket screen and its QR code.
type TicketHandler struct {
	Tickets  TicketStore    // order lookups scoped to the caller
	Location *time.Location // zone for dateshow/timeshow
}

type ticketOrder struct {
	ID             uint64    `json:"idorder"`
	Code           string    `json:"code"`
	TotalPrice     int64     `json:"total_price"`
	TotalPriceText string    `json:"total_price_text"` // 150.000 style
	PaymentMethod  string    `json:"payment_method"`
	PaidAt         time.Time `json:"paymentdate"`
}

type ticketFilm struct {
	ID       uint64 `json:"idfilm"`
	Name     string `json:"filmname"`
	Genre    string `json:"type"`
	Duration string `json:"time"`
	Image    string `json:"image"`
}

type ticketShowtime struct {
	ID        uint64 `json:"idshowtime"`
	DateShow  int    `json:"dateshow"`
	MonthShow int    `json:"monthshow"`
	YearShow  int    `json:"yearshow"`
	TimeShow  string `json:"timeshow"`
}

type ticketCinema struct {
	ID      uint64 `json:"idcinema"`
	Name    string `json:"namecinema"`
	Address string `json:"address"`
	Seats   string `json:"seats"`
}

// ticketView is the ticket screen payload, shared with the order response.
type ticketView struct {
	Order    ticketOrder    `json:"order"`
	Film     ticketFilm     `json:"film"`
	Showtime ticketShowtime `json:"showtime"`
	Cinema   ticketCinema   `json:"cinema"`
}

func newTicketView(d model.TicketDetail, loc *time.Location) ticketView {
	if loc == nil {
		loc = time.UTC
	}
	start := d.Showtime.StartsAt.In(loc)
	return ticketView{
		Order: ticketOrder{
			ID:             d.Order.ID,
			Code:           d.Order.Code,
			TotalPrice:     d.Order.TotalPrice,
			TotalPriceText: utils.FormatVND(d.Order.TotalPrice),
			PaymentMethod:  d.Order.PaymentMethod,
			PaidAt:         d.Order.PaidAt,
		},
		Film: ticketFilm{
			ID:       d.Film.ID,
			Name:     d.Film.Name,
			Genre:    d.Film.Genre,
			Duration: d.Film.Duration,
			Image:    d.Film.Image,
		},
		Showtime: ticketShowtime{
			ID:        d.Showtime.ID,
			DateShow:  start.Day(),
			MonthShow: int(start.Month()),
			YearShow:  start.Year(),
			TimeShow:  start.Format("15:04"),
		},
		Cinema: ticketCinema{
			ID:      d.Cinema.ID,
			Name:    d.Cinema.Name,
			Address: d.Cinema.Address,
			Seats:   strings.Join(d.Order.Seats, ", "),
		},
	}
}

// List returns the caller's tickets, newest first.
func (h *TicketHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		return serverError(c, "list tickets failed")
	}
	if items == nil {
		items = []model.TicketSummary{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// load fetches the ticket named by :id. When ok is false the error response
// has already been written.
func (h *TicketHandler) load(c echo.Context) (d model.TicketDetail, ok bool, err error) {
	uid, err := getUserID(c)
	if err != nil {
		return d, false, unauthorized(c)
	}
	id, valid := pathID(c, "id")
	if !valid {
		return d, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err = h.Tickets.GetDetailForUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return d, false, c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return d, false, serverError(c, "load ticket failed")
	}
	return d, true, nil
}

// Get returns one of the caller's tickets.
func (h *TicketHandler) Get(c echo.Context) error {
	d, ok, err := h.load(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, newTicketView(d, h.Location))
}

// QR renders the ticket code as a PNG for the gate scanner.
func (h *TicketHandler) QR(c echo.Context) error {
	d, ok, err := h.load(c)
	if !ok {
		return err
	}
	png, err := utils.QRCodePNG(d.Order.Code, utils.TicketQRSize)
	if err != nil {
		return serverError(c, "render qr failed")
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Blob(http.StatusOK, "image/png", png)
}
