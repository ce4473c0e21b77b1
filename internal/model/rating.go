package model

import "math"

// Rating is one user's star rating for a film (`user_film`). A user holds at
// most one rating per film.
type Rating struct {
	FilmID  uint64
	UserID  uint64
	Stars   int     // 1..5
	Comment *string // optional review text
}

// RatingSummary aggregates the ratings of a film.
type RatingSummary struct {
	Average  float64 `json:"average_rating"`
	Count    int     `json:"rating_count"`
	Comments int     `json:"total_comments"`
}

// RoundRating rounds an average to one decimal place, as shown on film cards.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
