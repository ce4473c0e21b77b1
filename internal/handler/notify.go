package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/service"
)

// NotifyHandler accepts ticket emails and queues them for the worker.
type NotifyHandler struct {
	Publisher service.TicketPublisher
	Log       *log.Logger
}

// SendTicketEmail validates the body and publishes it to the ticket.email
// queue. Delivery happens later in the worker.
func (h *NotifyHandler) SendTicketEmail(c echo.Context) error {
	var msg model.TicketEmail
	if ok, err := bindValid(c, &msg); !ok {
		return err
	}
	msg.Email = strings.TrimSpace(msg.Email)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Publisher.PublishTicketEmail(ctx, msg); err != nil {
		if h.Log != nil {
			h.Log.Error("publish ticket email failed", "email", msg.Email, "err", err)
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "email queue unavailable"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}
