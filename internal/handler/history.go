package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/service"
)

// HistoryHandler serves the payment history chart.
type HistoryHandler struct {
	Tickets  TicketStore
	Location *time.Location
	Now      func() time.Time
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// Get aggregates the caller's payments for ?year=&month=, defaulting to the
// current month.
func (h *HistoryHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	now = now.In(loc)

	year, ok := queryInt(c, "year", now.Year())
	if !ok || year < 1970 || year > 9999 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
	}
	month, ok := queryInt(c, "month", int(now.Month()))
	if !ok || month < 1 || month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.Tickets.PaymentsByUser(ctx, uid)
	if err != nil {
		return serverError(c, "load payments failed")
	}
	return c.JSON(http.StatusOK, service.BuildPaymentHistory(payments, year, month, loc))
}
