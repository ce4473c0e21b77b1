package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinebook/internal/model"
)

// RatingRepo stores star ratings in `user_film`, one row per user and film.
type RatingRepo struct{ db *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Upsert writes the rating of a user for a film, replacing any earlier one.
func (r *RatingRepo) Upsert(ctx context.Context, rt model.Rating) error {
	var comment sql.NullString
	if rt.Comment != nil {
		comment = sql.NullString{String: *rt.Comment, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_film (idfilm, iduser, star, comments) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE star = VALUES(star), comments = VALUES(comments)`,
		rt.FilmID, rt.UserID, rt.Stars, comment)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// Summary returns the rating aggregate of a film. Unrated films yield zeros.
func (r *RatingRepo) Summary(ctx context.Context, filmID uint64) (model.RatingSummary, error) {
	var s model.RatingSummary
	var avg float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(star), 0), COUNT(*),
		        COALESCE(SUM(CASE WHEN comments IS NOT NULL AND comments <> '' THEN 1 ELSE 0 END), 0)
		 FROM user_film WHERE idfilm = ?`, filmID).Scan(&avg, &s.Count, &s.Comments)
	if err != nil {
		return s, err
	}
	s.Average = model.RoundRating(avg)
	return s, nil
}

// GetForUser returns the rating a user left on a film, or ErrNotFound.
func (r *RatingRepo) GetForUser(ctx context.Context, filmID, userID uint64) (model.Rating, error) {
	rt := model.Rating{FilmID: filmID, UserID: userID}
	var comment sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT star, comments FROM user_film WHERE idfilm=? AND iduser=?", filmID, userID).
		Scan(&rt.Stars, &comment)
	if errors.Is(err, sql.ErrNoRows) {
		return rt, ErrNotFound
	}
	if err != nil {
		return rt, err
	}
	if comment.Valid {
		c := comment.String
		rt.Comment = &c
	}
	return rt, nil
}
