package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinebook/internal/model"
)

// SeatRepo reads the per-cinema seat layout (`seat`) and the seats already
// sold for a showtime (`orderdetail`).
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// SaveLayout creates or replaces the layout of a cinema.
func (r *SeatRepo) SaveLayout(ctx context.Context, l *model.SeatLayout) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO seat (idcinema, numrow, numcol, price) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE numrow = VALUES(numrow), numcol = VALUES(numcol), price = VALUES(price)`,
		l.CinemaID, l.Rows, l.Cols, l.Price)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		l.ID = uint64(id)
	}
	return nil
}

// LayoutByCinema returns the seat grid of a cinema or ErrLayoutNotFound.
func (r *SeatRepo) LayoutByCinema(ctx context.Context, cinemaID uint64) (model.SeatLayout, error) {
	var l model.SeatLayout
	err := r.db.QueryRowContext(ctx,
		"SELECT idseat, idcinema, numrow, numcol, price FROM seat WHERE idcinema = ? LIMIT 1", cinemaID).
		Scan(&l.ID, &l.CinemaID, &l.Rows, &l.Cols, &l.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrLayoutNotFound
	}
	return l, err
}

// SoldSeats returns the labels already sold for a showtime.
func (r *SeatRepo) SoldSeats(ctx context.Context, showtimeID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seat FROM orderdetail WHERE idshowtime = ? ORDER BY seat", showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
