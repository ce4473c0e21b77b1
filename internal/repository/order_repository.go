package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinebook/internal/model"
)

// ErrDuplicateOrder is returned by Create when the user already placed an
// order with the same client token.
var ErrDuplicateOrder = errors.New("duplicate order")

// OrderRepo persists orders and their `orderdetail` seat rows.
type OrderRepo struct {
	db *sql.DB // InnoDB; relies on the orderdetail unique key
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderAttempts bounds how often Create replays the transaction after
// InnoDB reports a deadlock.
const orderAttempts = 2

// Create inserts the order and one detail row per seat in a single
// transaction. The unique key on (idshowtime, seat) decides who gets a
// seat: when any seat is already sold nothing is written and ErrSeatTaken
// is returned. A deadlocked attempt is replayed once. On success o.ID is
// populated.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	if len(o.Seats) == 0 {
		return errors.New("order has no seats")
	}
	var err error
	for attempt := 0; attempt < orderAttempts; attempt++ {
		if err = r.create(ctx, o); err == nil || !isDeadlock(err) {
			return err
		}
	}
	return err
}

func (r *OrderRepo) create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var token sql.NullString
	if o.ClientToken != nil {
		token = sql.NullString{String: *o.ClientToken, Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (code, id, idfilm, idshowtime, idcinema, totalprice, payment_method, client_token, paymentdate)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		o.Code, o.UserID, o.FilmID, o.ShowtimeID, o.CinemaID, o.TotalPrice, o.PaymentMethod, token, o.PaidAt.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// One multi-row insert; a 1062 on any row means a seat was sold first.
	q := "INSERT INTO orderdetail (idorder, idshowtime, seat) VALUES "
	dargs := make([]interface{}, 0, len(o.Seats)*3)
	for i, s := range o.Seats {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?)"
		dargs = append(dargs, id, o.ShowtimeID, s)
	}
	if _, err := tx.ExecContext(ctx, q, dargs...); err != nil {
		if isDuplicate(err) {
			return ErrSeatTaken
		}
		return fmt.Errorf("insert order seats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	committed = true
	o.ID = uint64(id)
	return nil
}

const orderDetailSelect = `SELECT o.idorder, o.code, o.id, o.idfilm, o.idshowtime, o.idcinema, o.totalprice,
       o.payment_method, o.client_token, o.paymentdate,
       f.filmname, f.type, f.time, f.image, f.premiere,
       c.namecinema, c.address, s.starts_at,
       COALESCE(GROUP_CONCAT(od.seat ORDER BY od.idorderdetail SEPARATOR ','), '')
FROM orders o
JOIN films f ON f.idfilm = o.idfilm
JOIN cinemas c ON c.idcinema = o.idcinema
JOIN showtimes s ON s.idshowtime = o.idshowtime
LEFT JOIN orderdetail od ON od.idorder = o.idorder
`

const orderDetailGroup = ` GROUP BY o.idorder, o.code, o.id, o.idfilm, o.idshowtime, o.idcinema, o.totalprice,
       o.payment_method, o.client_token, o.paymentdate, f.filmname, f.type, f.time, f.image, f.premiere,
       c.namecinema, c.address, s.starts_at`

func splitSeats(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func scanTicketDetail(sc interface{ Scan(...interface{}) error }) (model.TicketDetail, error) {
	var d model.TicketDetail
	var token sql.NullString
	var seats string
	err := sc.Scan(&d.Order.ID, &d.Order.Code, &d.Order.UserID, &d.Order.FilmID, &d.Order.ShowtimeID,
		&d.Order.CinemaID, &d.Order.TotalPrice, &d.Order.PaymentMethod, &token, &d.Order.PaidAt,
		&d.Film.Name, &d.Film.Genre, &d.Film.Duration, &d.Film.Image, &d.Film.Premiere,
		&d.Cinema.Name, &d.Cinema.Address, &d.Showtime.StartsAt, &seats)
	if err != nil {
		return d, err
	}
	if token.Valid {
		t := token.String
		d.Order.ClientToken = &t
	}
	d.Order.Seats = splitSeats(seats)
	d.Order.PaidAt = d.Order.PaidAt.UTC()
	d.Film.ID = d.Order.FilmID
	d.Cinema.ID = d.Order.CinemaID
	d.Showtime = model.Showtime{ID: d.Order.ShowtimeID, FilmID: d.Order.FilmID, CinemaID: d.Order.CinemaID, StartsAt: d.Showtime.StartsAt.UTC()}
	return d, nil
}

// GetDetailForUser returns a ticket owned by userID. Orders of other users
// are reported as ErrOrderNotFound.
func (r *OrderRepo) GetDetailForUser(ctx context.Context, orderID, userID uint64) (model.TicketDetail, error) {
	row := r.db.QueryRowContext(ctx, orderDetailSelect+"WHERE o.idorder = ? AND o.id = ?"+orderDetailGroup, orderID, userID)
	d, err := scanTicketDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrOrderNotFound
	}
	return d, err
}

// FindByClientToken returns the order a user placed with the given token.
func (r *OrderRepo) FindByClientToken(ctx context.Context, userID uint64, token string) (model.TicketDetail, error) {
	row := r.db.QueryRowContext(ctx, orderDetailSelect+"WHERE o.id = ? AND o.client_token = ?"+orderDetailGroup, userID, token)
	d, err := scanTicketDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrOrderNotFound
	}
	return d, err
}

// ListByUser returns the tickets of a user, newest payment first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.TicketSummary, error) {
	const q = `SELECT o.idorder, o.code, o.idfilm, f.filmname, f.image, o.idcinema, c.namecinema,
	                  s.starts_at, o.totalprice, o.paymentdate,
	                  COALESCE(GROUP_CONCAT(od.seat ORDER BY od.idorderdetail SEPARATOR ','), '')
	           FROM orders o
	           JOIN films f ON f.idfilm = o.idfilm
	           JOIN cinemas c ON c.idcinema = o.idcinema
	           JOIN showtimes s ON s.idshowtime = o.idshowtime
	           LEFT JOIN orderdetail od ON od.idorder = o.idorder
	           WHERE o.id = ?
	           GROUP BY o.idorder, o.code, o.idfilm, f.filmname, f.image, o.idcinema, c.namecinema,
	                    s.starts_at, o.totalprice, o.paymentdate
	           ORDER BY o.paymentdate DESC, o.idorder DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	out := make([]model.TicketSummary, 0)
	for rows.Next() {
		var t model.TicketSummary
		var seats string
		if err := rows.Scan(&t.OrderID, &t.Code, &t.FilmID, &t.FilmName, &t.FilmImage, &t.CinemaID, &t.CinemaName,
			&t.StartsAt, &t.TotalPrice, &t.PaidAt, &seats); err != nil {
			return nil, err
		}
		t.StartsAt = t.StartsAt.UTC()
		t.PaidAt = t.PaidAt.UTC()
		t.Seats = splitSeats(seats)
		out = append(out, t)
	}
	return out, rows.Err()
}

// PaymentsByUser returns amount and payment time of every order of a user.
func (r *OrderRepo) PaymentsByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT totalprice, paymentdate FROM orders WHERE id = ? ORDER BY paymentdate", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		p.PaidAt = p.PaidAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
