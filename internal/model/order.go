package model

import "time"

// Order mirrors a row of `orders` together with its `orderdetail` seats.
type Order struct {
	ID            uint64
	Code          string // public ticket code, encoded in the QR
	UserID        uint64
	FilmID        uint64
	ShowtimeID    uint64
	CinemaID      uint64
	TotalPrice    int64 // VND
	PaymentMethod string
	ClientToken   *string // double-submit guard supplied by the client
	PaidAt        time.Time
	Seats         []string
}

// TicketSummary is one entry of the ticket list.
type TicketSummary struct {
	OrderID    uint64    `json:"idorder"`
	Code       string    `json:"code"`
	FilmID     uint64    `json:"idfilm"`
	FilmName   string    `json:"filmname"`
	FilmImage  string    `json:"image"`
	CinemaID   uint64    `json:"idcinema"`
	CinemaName string    `json:"namecinema"`
	StartsAt   time.Time `json:"starts_at"`
	TotalPrice int64     `json:"total_price"`
	PaidAt     time.Time `json:"paymentdate"`
	Seats      []string  `json:"seats"`
}

// TicketDetail is the receipt shown after payment and on the ticket screen.
type TicketDetail struct {
	Order    Order
	Film     Film
	Cinema   Cinema
	Showtime Showtime
}

// Payment is the slice of an order used by the payment history screen.
type Payment struct {
	Amount int64
	PaidAt time.Time
}

// DailySpend is one point of the payment history chart.
type DailySpend struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Amount int64  `json:"amount"`
}

// PaymentHistory is the payment history screen for one month.
type PaymentHistory struct {
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	TotalSpent int64        `json:"total_spent"`
	MonthTotal int64        `json:"month_total"`
	Days       []DailySpend `json:"days"`
}

// PaymentMethod is a selectable wallet on the payment screen.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PaymentMethods lists the wallets accepted by the order flow.
var PaymentMethods = []PaymentMethod{
	{ID: "zalo", Name: "Zalo Pay"},
	{ID: "momo", Name: "MoMo"},
	{ID: "shopee", Name: "ShopeePay"},
}

// IsPaymentMethod reports whether id names a known wallet.
func IsPaymentMethod(id string) bool {
	for _, m := range PaymentMethods {
		if m.ID == id {
			return true
		}
	}
	return false
}
