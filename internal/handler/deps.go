package handler

import (
	"context"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/service"
)

// The interfaces below are what the handlers need from the repositories.
// The *repository types satisfy them; tests use fakes.

type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p model.ProfileUpdate) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type FilmStore interface {
	ListByStatus(ctx context.Context, status model.FilmStatus) ([]model.FilmSummary, error)
	GetByID(ctx context.Context, id uint64) (model.Film, error)
	GetBySlug(ctx context.Context, slug string) (model.Film, error)
}

type RatingStore interface {
	Upsert(ctx context.Context, r model.Rating) error
	Summary(ctx context.Context, filmID uint64) (model.RatingSummary, error)
	GetForUser(ctx context.Context, filmID, userID uint64) (model.Rating, error)
}

type CreditStore interface {
	DirectorsByFilm(ctx context.Context, filmID uint64) ([]model.Person, error)
	ActorsByFilm(ctx context.Context, filmID uint64) ([]model.Person, error)
}

type CinemaStore interface {
	GetByID(ctx context.Context, id uint64) (model.Cinema, error)
	ListByFilm(ctx context.Context, filmID uint64) ([]model.CinemaScreening, error)
}

type ShowtimeStore interface {
	GetByID(ctx context.Context, id uint64) (model.Showtime, error)
	ListByFilmAndCinema(ctx context.Context, filmID, cinemaID uint64, from time.Time) ([]model.Showtime, error)
}

type SeatStore interface {
	LayoutByCinema(ctx context.Context, cinemaID uint64) (model.SeatLayout, error)
	SoldSeats(ctx context.Context, showtimeID uint64) ([]string, error)
}

type TicketStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.TicketSummary, error)
	GetDetailForUser(ctx context.Context, orderID, userID uint64) (model.TicketDetail, error)
	PaymentsByUser(ctx context.Context, userID uint64) ([]model.Payment, error)
}

type NotificationStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint64) error
}

// OrderPlacer runs the purchase flow; *service.BookingService satisfies it.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req service.OrderRequest) (service.OrderResult, error)
}
