package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinebook/internal/model"
)

// CreditRepo loads directors and actors through their join tables.
type CreditRepo struct{ db *sql.DB }

func NewCreditRepo(db *sql.DB) *CreditRepo { return &CreditRepo{db: db} }

// DirectorsByFilm lists the directors of a film by name. A film without
// credits yields an empty slice.
func (r *CreditRepo) DirectorsByFilm(ctx context.Context, filmID uint64) ([]model.Person, error) {
	return r.people(ctx, `SELECT d.iddirector, d.namedirector, d.avatardirector
		FROM film_director fd JOIN directors d ON d.iddirector = fd.iddirector
		WHERE fd.idfilm = ? ORDER BY d.namedirector`, filmID)
}

// ActorsByFilm lists the cast of a film by name.
func (r *CreditRepo) ActorsByFilm(ctx context.Context, filmID uint64) ([]model.Person, error) {
	return r.people(ctx, `SELECT a.idactor, a.nameactor, a.avataractor
		FROM film_actor fa JOIN actors a ON a.idactor = fa.idactor
		WHERE fa.idfilm = ? ORDER BY a.nameactor`, filmID)
}

func (r *CreditRepo) people(ctx context.Context, q string, filmID uint64) ([]model.Person, error) {
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Person, 0) // [] not null in JSON
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Avatar); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
