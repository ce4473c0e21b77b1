package model

import "time"

// FilmStatus is the films.status column.
type FilmStatus int

const (
	FilmComingSoon FilmStatus = 0
	FilmNowPlaying FilmStatus = 1
)

// ParseFilmStatus accepts the tab names used by the movie list.
func ParseFilmStatus(s string) (FilmStatus, bool) {
	switch s {
	case "", "now_playing", "nowPlaying", "1":
		return FilmNowPlaying, true
	case "coming_soon", "comingSoon", "0":
		return FilmComingSoon, true
	}
	return 0, false
}

// Film mirrors a row of `films`.
type Film struct {
	ID         uint64     `json:"idfilm"`
	Slug       string     `json:"slug"`
	Name       string     `json:"filmname"`
	Genre      string     `json:"type"`
	Duration   string     `json:"time"`
	Premiere   time.Time  `json:"premiere"`
	Image      string     `json:"image"`
	Country    string     `json:"country"`
	Audience   string     `json:"object"`
	Content    string     `json:"content"`
	TrailerURL string     `json:"demo"`
	Status     FilmStatus `json:"status"`
}

// FilmSummary is a movie list entry with its rating aggregate.
type FilmSummary struct {
	ID            uint64    `json:"idfilm"`
	Slug          string    `json:"slug"`
	Name          string    `json:"filmname"`
	Genre         string    `json:"type"`
	Duration      string    `json:"time"`
	Premiere      time.Time `json:"premiere"`
	Image         string    `json:"image"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	TotalComments int       `json:"total_comments"`
}

// Person is a director or an actor.
type Person struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Credits groups the people attached to a film.
type Credits struct {
	Directors []Person `json:"directors"`
	Actors    []Person `json:"actors"`
}
