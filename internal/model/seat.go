package model

// SeatLayout mirrors the `seat` row of a cinema: a numrow x numcol grid with
// a single ticket price in VND.
type SeatLayout struct {
	ID       uint64
	CinemaID uint64
	Rows     int
	Cols     int
	Price    int64
}

// SeatState is one cell of a seat map.
type SeatState struct {
	Label string `json:"label"`
	Sold  bool   `json:"sold"`
}

// SeatMap is the seat grid of a cinema for one showtime.
type SeatMap struct {
	CinemaID   uint64      `json:"idcinema"`
	ShowtimeID uint64      `json:"idshowtime,omitempty"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Price      int64       `json:"price"`
	Seats      []SeatState `json:"seats"`
}
