package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinebook/internal/model"
)

// CinemaRepo encapsulates all queries on `cinemas` and `films_cinemas`.
type CinemaRepo struct {
	db *sql.DB
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.
func NewCinemaRepo(db *sql.DB) *CinemaRepo {
	return &CinemaRepo{db: db}
}

// Create inserts a cinema and populates its ID.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO cinemas (namecinema, address) VALUES (?, ?)", c.Name, c.Address)
	if err != nil {
		return fmt.Errorf("insert cinema: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// AddScreening links a film to a cinema with its room and start label.
// Re-linking the same pair updates the room and start.
func (r *CinemaRepo) AddScreening(ctx context.Context, filmID uint64, s model.CinemaScreening) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO films_cinemas (idfilm, idcinema, room, start) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE room = VALUES(room), start = VALUES(start)`,
		filmID, s.ID, s.Room, s.Start)
	return err
}

// GetByID returns a cinema or ErrCinemaNotFound.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (model.Cinema, error) {
	var c model.Cinema
	err := r.db.QueryRowContext(ctx,
		"SELECT idcinema, namecinema, address FROM cinemas WHERE idcinema = ?", id).
		Scan(&c.ID, &c.Name, &c.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCinemaNotFound
	}
	return c, err
}

// ListByFilm returns the cinemas screening a film ordered by name.
func (r *CinemaRepo) ListByFilm(ctx context.Context, filmID uint64) ([]model.CinemaScreening, error) {
	const q = `SELECT c.idcinema, c.namecinema, c.address, fc.room, fc.start
	           FROM films_cinemas fc
	           JOIN cinemas c ON c.idcinema = fc.idcinema
	           WHERE fc.idfilm = ?
	           ORDER BY c.namecinema, c.idcinema`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CinemaScreening, 0)
	for rows.Next() {
		var s model.CinemaScreening
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Room, &s.Start); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
