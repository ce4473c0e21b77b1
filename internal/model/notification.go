package model

import "time"

// Notification is an entry of a user's in-app inbox.
type Notification struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketEmail is the body of POST /send-ticket-email and of the messages on
// the ticket.email queue.
type TicketEmail struct {
	Email      string   `json:"email" validate:"required,email"`
	FilmName   string   `json:"filmName" validate:"required"`
	Seats      []string `json:"seats" validate:"required,min=1,dive,required"`
	Cinema     string   `json:"cinema" validate:"required"`
	TotalPrice int64    `json:"totalPrice" validate:"gte=0"`
	Time       string   `json:"time"`
	OrderCode  string   `json:"orderCode,omitempty"`
}
