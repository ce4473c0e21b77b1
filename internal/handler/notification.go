package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/repository"
)

// NotificationHandler serves the in-app inbox.
type NotificationHandler struct {
	Notifications NotificationStore
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Notifications.ListByUser(ctx, uid)
	if err != nil {
		return serverError(c, "list notifications failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MarkRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return serverError(c, "update notification failed")
	}
	return c.NoContent(http.StatusNoContent)
}
