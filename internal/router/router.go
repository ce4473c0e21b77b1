// Package router registers the HTTP routes of the API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Profile       *handler.ProfileHandler
	Films         *handler.FilmHandler
	Showtimes     *handler.ShowtimeHandler
	Orders        *handler.OrderHandler
	Tickets       *handler.TicketHandler
	History       *handler.HistoryHandler
	Notify        *handler.NotifyHandler
	Notifications *handler.NotificationHandler
}

// Options carries the shared middleware. Nil middleware is skipped.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc // response cache for catalogue reads
	RateLimit echo.MiddlewareFunc // applied to every /v1 route
}

func (o Options) use(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Register mounts all routes.
func Register(e *echo.Echo, h Handlers, opt Options) {
	RegisterRoutes(e, h.Notify)
	RegisterAuth(e, h.Auth, opt)
	RegisterCatalog(e, h.Films, h.Showtimes, opt)
	RegisterCustomer(e, h, opt)
}

// RegisterRoutes registers the unversioned endpoints: the health check and
// the ticket email intake used by other services.
func RegisterRoutes(e *echo.Echo, n *handler.NotifyHandler) {
	e.GET("/healthz", handler.Health)
	if n != nil {
		e.POST("/send-ticket-email", n.SendTicketEmail)
	}
}

// RegisterAuth registers sign up, sign in, token refresh and logout. None of
// them require an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opt Options) {
	g := e.Group("/v1/auth", opt.use(opt.RateLimit)...)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterCatalog registers the public browse endpoints. Film reads go
// through the response cache; film detail also reads an optional token to
// include the caller's own rating.
func RegisterCatalog(e *echo.Echo, f *handler.FilmHandler, s *handler.ShowtimeHandler, opt Options) {
	g := e.Group("/v1", opt.use(opt.RateLimit)...)
	cached := opt.use(opt.Cache)

	g.GET("/films", f.List, cached...)
	g.GET("/films/:id", f.Get, opt.use(middleware.OptionalJWT(opt.JWTSecret), opt.Cache)...)
	g.GET("/films/:id/credits", f.Credits, cached...)
	g.GET("/films/:id/cinemas", f.Cinemas, cached...)
	g.GET("/payment-methods", handler.PaymentMethods, cached...)

	// Seat availability changes with every order and is never cached.
	g.GET("/films/:id/cinemas/:cinemaId/showtimes", s.List)
	g.GET("/cinemas/:id/seats", s.SeatMap)
}
