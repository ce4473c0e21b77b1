package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

var (
	ErrNoSeats              = errors.New("at least one seat is required")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrShowtimeMismatch     = errors.New("showtime does not belong to film and cinema")
	ErrShowtimeStarted      = errors.New("showtime already started")
)

// InvalidSeatsError lists requested labels that are not part of the layout.
type InvalidSeatsError struct{ Seats []string }

func (e *InvalidSeatsError) Error() string {
	return "invalid seats: " + strings.Join(e.Seats, ", ")
}

// SeatsTakenError lists requested labels already sold for the showtime.
type SeatsTakenError struct{ Seats []string }

func (e *SeatsTakenError) Error() string {
	return "seats already sold: " + strings.Join(e.Seats, ", ")
}

func (e *SeatsTakenError) Is(target error) bool { return target == repository.ErrSeatTaken }

type Films interface {
	GetByID(ctx context.Context, id uint64) (model.Film, error)
}

type Cinemas interface {
	GetByID(ctx context.Context, id uint64) (model.Cinema, error)
}

type Showtimes interface {
	GetByID(ctx context.Context, id uint64) (model.Showtime, error)
}

type Seats interface {
	LayoutByCinema(ctx context.Context, cinemaID uint64) (model.SeatLayout, error)
	SoldSeats(ctx context.Context, showtimeID uint64) ([]string, error)
}

type Orders interface {
	Create(ctx context.Context, o *model.Order) error
	FindByClientToken(ctx context.Context, userID uint64, token string) (model.TicketDetail, error)
	GetDetailForUser(ctx context.Context, orderID, userID uint64) (model.TicketDetail, error)
}

type Users interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type Notifications interface {
	Create(ctx context.Context, n *model.Notification) error
}

// OrderRequest is a purchase of seats for one showtime.
type OrderRequest struct {
	UserID        uint64
	FilmID        uint64
	CinemaID      uint64
	ShowtimeID    uint64
	Seats         []string
	PaymentMethod string
	ClientToken   string
}

// OrderResult is the ticket of a placed order. Created is false when the
// request repeated an earlier client token and the existing order was
// returned instead.
type OrderResult struct {
	Ticket  model.TicketDetail
	Created bool
}

// BookingService runs the purchase flow.
type BookingService struct {
	Films         Films
	Cinemas       Cinemas
	Showtimes     Showtimes
	Seats         Seats
	Orders        Orders
	Users         Users
	Notifications Notifications
	Notifier      TicketNotifier
	Log           *log.Logger
	Location      *time.Location

	Now     func() time.Time
	NewCode func() string
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *BookingService) code() string {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return uuid.NewString()
}

// PlaceOrder validates the request, writes the order and its seats in one
// transaction and then sends the ticket email and inbox notification on a
// best-effort basis.
func (s *BookingService) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	seats := NormalizeSeats(req.Seats)
	if len(seats) == 0 {
		return OrderResult{}, ErrNoSeats
	}
	if !model.IsPaymentMethod(req.PaymentMethod) {
		return OrderResult{}, ErrUnknownPaymentMethod
	}

	token := strings.TrimSpace(req.ClientToken)
	if token != "" {
		prev, err := s.Orders.FindByClientToken(ctx, req.UserID, token)
		if err == nil {
			return OrderResult{Ticket: prev}, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return OrderResult{}, err
		}
	}

	film, err := s.Films.GetByID(ctx, req.FilmID)
	if err != nil {
		return OrderResult{}, err
	}
	cinema, err := s.Cinemas.GetByID(ctx, req.CinemaID)
	if err != nil {
		return OrderResult{}, err
	}
	st, err := s.Showtimes.GetByID(ctx, req.ShowtimeID)
	if err != nil {
		return OrderResult{}, err
	}
	if st.FilmID != film.ID || st.CinemaID != cinema.ID {
		return OrderResult{}, ErrShowtimeMismatch
	}
	now := s.now()
	if !now.Before(st.StartsAt) {
		return OrderResult{}, ErrShowtimeStarted
	}
	layout, err := s.Seats.LayoutByCinema(ctx, cinema.ID)
	if err != nil {
		return OrderResult{}, err
	}
	var invalid []string
	for _, label := range seats {
		if !InLayout(layout, label) {
			invalid = append(invalid, label)
		}
	}
	if len(invalid) > 0 {
		return OrderResult{}, &InvalidSeatsError{Seats: invalid}
	}

	o := &model.Order{
		Code:          s.code(),
		UserID:        req.UserID,
		FilmID:        film.ID,
		ShowtimeID:    st.ID,
		CinemaID:      cinema.ID,
		TotalPrice:    int64(len(seats)) * layout.Price,
		PaymentMethod: req.PaymentMethod,
		PaidAt:        now.UTC(),
		Seats:         seats,
	}
	if token != "" {
		o.ClientToken = &token
	}

	if err := s.Orders.Create(ctx, o); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatTaken):
			return OrderResult{}, s.takenError(ctx, st.ID, seats)
		case errors.Is(err, repository.ErrDuplicateOrder) && token != "":
			prev, ferr := s.Orders.FindByClientToken(ctx, req.UserID, token)
			if ferr != nil {
				return OrderResult{}, ferr
			}
			return OrderResult{Ticket: prev}, nil
		}
		return OrderResult{}, err
	}

	ticket := model.TicketDetail{Order: *o, Film: film, Cinema: cinema, Showtime: st}
	s.afterOrder(ctx, ticket)
	return OrderResult{Ticket: ticket, Created: true}, nil
}

func (s *BookingService) takenError(ctx context.Context, showtimeID uint64, requested []string) error {
	sold, err := s.Seats.SoldSeats(ctx, showtimeID)
	if err != nil {
		return &SeatsTakenError{Seats: requested}
	}
	soldSet := make(map[string]struct{}, len(sold))
	for _, l := range sold {
		soldSet[l] = struct{}{}
	}
	var taken []string
	for _, l := range requested {
		if _, ok := soldSet[l]; ok {
			taken = append(taken, l)
		}
	}
	if len(taken) == 0 {
		taken = requested
	}
	return &SeatsTakenError{Seats: taken}
}

// ShowtimeText renders a showtime start the way tickets print it.
func ShowtimeText(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04 02/01/2006")
}

// afterOrder sends the ticket email and writes the inbox entry. Failures are
// logged and never undo the order.
func (s *BookingService) afterOrder(ctx context.Context, t model.TicketDetail) {
	logger := s.Log
	if logger == nil {
		logger = log.Default()
	}
	when := ShowtimeText(t.Showtime.StartsAt, s.Location)

	if s.Notifier != nil && s.Users != nil {
		u, err := s.Users.GetByID(ctx, t.Order.UserID)
		if err != nil {
			logger.Warn("ticket email skipped", "order", t.Order.ID, "err", err)
		} else {
			msg := model.TicketEmail{
				Email:      u.Email,
				FilmName:   t.Film.Name,
				Seats:      t.Order.Seats,
				Cinema:     t.Cinema.Name,
				TotalPrice: t.Order.TotalPrice,
				Time:       when,
				OrderCode:  t.Order.Code,
			}
			if err := s.Notifier.NotifyTicket(ctx, msg); err != nil {
				logger.Warn("ticket email failed", "order", t.Order.ID, "err", err)
			}
		}
	}

	if s.Notifications != nil {
		n := &model.Notification{
			UserID:  t.Order.UserID,
			Title:   "Ticket booked",
			Message: fmt.Sprintf("%s at %s, %s, seats %s", t.Film.Name, t.Cinema.Name, when, strings.Join(t.Order.Seats, ", ")),
		}
		if err := s.Notifications.Create(ctx, n); err != nil {
			logger.Warn("notification insert failed", "order", t.Order.ID, "err", err)
		}
	}
}
