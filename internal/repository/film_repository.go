package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/iliyamo/cinebook/internal/model"
)

// FilmRepo reads the `films` catalog.
type FilmRepo struct{ db *sql.DB }

func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{db: db} }

const filmColumns = "idfilm,slug,filmname,type,time,premiere,image,country,object,content,demo,status"

func scanFilm(sc interface{ Scan(...interface{}) error }) (model.Film, error) {
	var f model.Film
	err := sc.Scan(&f.ID, &f.Slug, &f.Name, &f.Genre, &f.Duration, &f.Premiere, &f.Image,
		&f.Country, &f.Audience, &f.Content, &f.TrailerURL, &f.Status)
	return f, err
}

// ListByStatus returns the movie list for one tab with the rating aggregate
// of every film, computed in a single grouped query. Now playing films are
// newest first, coming soon films are soonest first.
func (r *FilmRepo) ListByStatus(ctx context.Context, status model.FilmStatus) ([]model.FilmSummary, error) {
	order := "f.premiere DESC, f.idfilm DESC"
	if status == model.FilmComingSoon {
		order = "f.premiere ASC, f.idfilm ASC"
	}
	q := `SELECT f.idfilm, f.slug, f.filmname, f.type, f.time, f.premiere, f.image,
	             COALESCE(AVG(uf.star), 0),
	             COUNT(uf.iduser),
	             COALESCE(SUM(CASE WHEN uf.comments IS NOT NULL AND uf.comments <> '' THEN 1 ELSE 0 END), 0)
	      FROM films f
	      LEFT JOIN user_film uf ON uf.idfilm = f.idfilm
	      WHERE f.status = ?
	      GROUP BY f.idfilm, f.slug, f.filmname, f.type, f.time, f.premiere, f.image
	      ORDER BY ` + order
	rows, err := r.db.QueryContext(ctx, q, int(status))
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	out := make([]model.FilmSummary, 0)
	for rows.Next() {
		var s model.FilmSummary
		var avg float64
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Genre, &s.Duration, &s.Premiere, &s.Image,
			&avg, &s.RatingCount, &s.TotalComments); err != nil {
			return nil, err
		}
		s.AverageRating = model.RoundRating(avg)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns one film or ErrFilmNotFound.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (model.Film, error) {
	f, err := scanFilm(r.db.QueryRowContext(ctx, "SELECT "+filmColumns+" FROM films WHERE idfilm=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrFilmNotFound
	}
	return f, err
}

// GetBySlug returns one film by its URL slug or ErrFilmNotFound.
func (r *FilmRepo) GetBySlug(ctx context.Context, s string) (model.Film, error) {
	f, err := scanFilm(r.db.QueryRowContext(ctx, "SELECT "+filmColumns+" FROM films WHERE slug=?", s))
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrFilmNotFound
	}
	return f, err
}

// Create inserts a film. The slug is derived from the name; when it is taken
// the premiere year is appended.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	if f.Slug == "" {
		f.Slug = slug.Make(f.Name)
	}
	insert := func() (sql.Result, error) {
		return r.db.ExecContext(ctx,
			`INSERT INTO films (slug, filmname, type, time, premiere, image, country, object, content, demo, status)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			f.Slug, f.Name, f.Genre, f.Duration, f.Premiere.Format("2006-01-02"), f.Image,
			f.Country, f.Audience, f.Content, f.TrailerURL, int(f.Status))
	}
	res, err := insert()
	if err != nil && isDuplicate(err) {
		f.Slug = slug.Make(f.Name + " " + f.Premiere.Format("2006"))
		res, err = insert()
	}
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert film: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// PromoteReleased moves coming soon films whose premiere is on or before
// today to now playing and returns how many rows changed.
func (r *FilmRepo) PromoteReleased(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE films SET status=? WHERE status=? AND premiere <= ?",
		int(model.FilmNowPlaying), int(model.FilmComingSoon), today.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("promote films: %w", err)
	}
	return res.RowsAffected()
}
