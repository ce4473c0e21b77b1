package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// ShowtimeRepo reads `showtimes`. starts_at is stored in UTC.
type ShowtimeRepo struct{ db *sql.DB }

func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// Create inserts a showtime and populates its ID.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO showtimes (idfilm, idcinema, starts_at) VALUES (?,?,?)",
		s.FilmID, s.CinemaID, s.StartsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID returns a showtime or ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (model.Showtime, error) {
	var s model.Showtime
	err := r.db.QueryRowContext(ctx,
		"SELECT idshowtime, idfilm, idcinema, starts_at FROM showtimes WHERE idshowtime = ?", id).
		Scan(&s.ID, &s.FilmID, &s.CinemaID, &s.StartsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrShowtimeNotFound
	}
	s.StartsAt = s.StartsAt.UTC()
	return s, err
}

// ListByFilmAndCinema returns the showtimes of a film at a cinema ordered by
// start. When from is non-zero, earlier showtimes are skipped.
func (r *ShowtimeRepo) ListByFilmAndCinema(ctx context.Context, filmID, cinemaID uint64, from time.Time) ([]model.Showtime, error) {
	q := "SELECT idshowtime, idfilm, idcinema, starts_at FROM showtimes WHERE idfilm = ? AND idcinema = ?"
	args := []interface{}{filmID, cinemaID}
	if !from.IsZero() {
		q += " AND starts_at >= ?"
		args = append(args, from.UTC())
	}
	q += " ORDER BY starts_at, idshowtime"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Showtime, 0)
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(&s.ID, &s.FilmID, &s.CinemaID, &s.StartsAt); err != nil {
			return nil, err
		}
		s.StartsAt = s.StartsAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
