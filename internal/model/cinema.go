package model

import "time"

// Cinema mirrors a row of `cinemas`.
type Cinema struct {
	ID      uint64 `json:"idcinema"`
	Name    string `json:"namecinema"`
	Address string `json:"address"`
}

// CinemaScreening is a cinema that screens a given film, joined with the
// `films_cinemas` room and start columns.
type CinemaScreening struct {
	Cinema
	Room  string `json:"room"`
	Start string `json:"start"`
}

// Showtime mirrors a row of `showtimes`.
type Showtime struct {
	ID       uint64
	FilmID   uint64
	CinemaID uint64
	StartsAt time.Time
}
