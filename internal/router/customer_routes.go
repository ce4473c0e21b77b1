package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
)

// RegisterCustomer registers the signed-in endpoints under /v1. All routes
// require a valid JWT and the CUSTOMER role.
func RegisterCustomer(e *echo.Echo, h Handlers, opt Options) {
	g := e.Group("/v1", opt.use(
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireRole(model.RoleCustomer),
		opt.RateLimit,
	)...)

	g.GET("/me", h.Profile.Me)
	g.GET("/me/session", h.Profile.Session)
	g.PUT("/me", h.Profile.Update)

	g.PUT("/films/:id/rating", h.Films.Rate)

	g.POST("/orders", h.Orders.Create)
	g.GET("/tickets", h.Tickets.List)
	g.GET("/tickets/:id", h.Tickets.Get)
	g.GET("/tickets/:id/qr", h.Tickets.QR)
	g.GET("/payments/history", h.History.Get)

	g.GET("/notifications", h.Notifications.List)
	g.POST("/notifications/:id/read", h.Notifications.MarkRead)
}
