package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

type fakeFilms struct{ films []model.Film }

func (f *fakeFilms) ListByStatus(_ context.Context, st model.FilmStatus) ([]model.FilmSummary, error) {
	out := []model.FilmSummary{}
	for _, x := range f.films {
		if x.Status == st {
			out = append(out, model.FilmSummary{ID: x.ID, Slug: x.Slug, Name: x.Name})
		}
	}
	return out, nil
}

func (f *fakeFilms) GetByID(_ context.Context, id uint64) (model.Film, error) {
	for _, x := range f.films {
		if x.ID == id {
			return x, nil
		}
	}
	return model.Film{}, repository.ErrFilmNotFound
}

func (f *fakeFilms) GetBySlug(_ context.Context, s string) (model.Film, error) {
	for _, x := range f.films {
		if x.Slug == s {
			return x, nil
		}
	}
	return model.Film{}, repository.ErrFilmNotFound
}

type fakeRatings struct {
	byUser map[uint64]model.Rating
}

func (f *fakeRatings) Upsert(_ context.Context, r model.Rating) error {
	f.byUser[r.UserID] = r
	return nil
}

func (f *fakeRatings) Summary(context.Context, uint64) (model.RatingSummary, error) {
	var s model.RatingSummary
	total := 0
	for _, r := range f.byUser {
		s.Count++
		total += r.Stars
		if r.Comment != nil {
			s.Comments++
		}
	}
	if s.Count > 0 {
		s.Average = model.RoundRating(float64(total) / float64(s.Count))
	}
	return s, nil
}

func (f *fakeRatings) GetForUser(_ context.Context, _, uid uint64) (model.Rating, error) {
	r, ok := f.byUser[uid]
	if !ok {
		return model.Rating{}, repository.ErrNotFound
	}
	return r, nil
}

type fakeCredits struct{}

func (fakeCredits) DirectorsByFilm(context.Context, uint64) ([]model.Person, error) {
	return []model.Person{{ID: 1, Name: "Ly Hai"}}, nil
}

func (fakeCredits) ActorsByFilm(context.Context, uint64) ([]model.Person, error) {
	return []model.Person{}, nil
}

type fakeCinemas struct{}

func (fakeCinemas) GetByID(_ context.Context, id uint64) (model.Cinema, error) {
	if id != 2 {
		return model.Cinema{}, repository.ErrCinemaNotFound
	}
	return model.Cinema{ID: 2, Name: "CGV Landmark"}, nil
}

func (fakeCinemas) ListByFilm(context.Context, uint64) ([]model.CinemaScreening, error) {
	return []model.CinemaScreening{{Cinema: model.Cinema{ID: 2, Name: "CGV Landmark"}, Room: "3"}}, nil
}

func newFilmHandler() (*FilmHandler, *fakeRatings) {
	ratings := &fakeRatings{byUser: map[uint64]model.Rating{
		5: {FilmID: 1, UserID: 5, Stars: 4},
		6: {FilmID: 1, UserID: 6, Stars: 5},
	}}
	films := &fakeFilms{films: []model.Film{
		{ID: 1, Slug: "lat-mat-7", Name: "Lat Mat 7", Status: model.FilmNowPlaying},
		{ID: 2, Slug: "dune", Name: "Dune", Status: model.FilmComingSoon},
	}}
	return &FilmHandler{Films: films, Ratings: ratings, People: fakeCredits{}, Screenings: fakeCinemas{}}, ratings
}

func TestFilmList(t *testing.T) {
	e := newEcho()
	h, _ := newFilmHandler()

	c, rec := newCtx(e, http.MethodGet, "/v1/films?status=coming_soon", "", 0)
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)
	items := decodeMap(t, rec)["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["slug"] != "dune" {
		t.Fatalf("items = %v", items)
	}

	c, rec = newCtx(e, http.MethodGet, "/v1/films?status=archived", "", 0)
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestFilmGet(t *testing.T) {
	e := newEcho()
	h, _ := newFilmHandler()

	t.Run("GuestByID", func(t *testing.T) {
		c, rec := newCtx(e, http.MethodGet, "/v1/films/1", "", 0)
		withParams(c, "id", "1")
		if err := h.Get(c); err != nil {
			t.Fatal(err)
		}
		wantStatus(t, rec, http.StatusOK)
		body := decodeMap(t, rec)
		if body["average_rating"] != 4.5 || body["rating_count"] != float64(2) {
			t.Fatalf("body = %v", body)
		}
		if _, ok := body["my_rating"]; ok {
			t.Fatal("guest got my_rating")
		}
	})

	t.Run("UserBySlug", func(t *testing.T) {
		c, rec := newCtx(e, http.MethodGet, "/v1/films/lat-mat-7", "", 5)
		withParams(c, "id", "lat-mat-7")
		if err := h.Get(c); err != nil {
			t.Fatal(err)
		}
		wantStatus(t, rec, http.StatusOK)
		if got := decodeMap(t, rec)["my_rating"]; got != float64(4) {
			t.Fatalf("my_rating = %v", got)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		c, rec := newCtx(e, http.MethodGet, "/v1/films/99", "", 0)
		withParams(c, "id", "99")
		if err := h.Get(c); err != nil {
			t.Fatal(err)
		}
		wantStatus(t, rec, http.StatusNotFound)
	})
}

func TestFilmRate(t *testing.T) {
	e := newEcho()
	h, ratings := newFilmHandler()

	c, rec := newCtx(e, http.MethodPut, "/v1/films/1/rating", `{"star":6}`, 7)
	withParams(c, "id", "1")
	if err := h.Rate(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusBadRequest)

	c, rec = newCtx(e, http.MethodPut, "/v1/films/1/rating", `{"star":3,"comment":"  hay  "}`, 7)
	withParams(c, "id", "1")
	if err := h.Rate(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)
	r := ratings.byUser[7]
	if r.Stars != 3 || r.Comment == nil || *r.Comment != "hay" {
		t.Fatalf("stored rating = %+v", r)
	}
	sum := decodeMap(t, rec)["summary"].(map[string]interface{})
	if sum["rating_count"] != float64(3) || sum["total_comments"] != float64(1) {
		t.Fatalf("summary = %v", sum)
	}
}

func TestFilmCreditsAndCinemas(t *testing.T) {
	e := newEcho()
	h, _ := newFilmHandler()

	c, rec := newCtx(e, http.MethodGet, "/v1/films/1/credits", "", 0)
	withParams(c, "id", "1")
	if err := h.Credits(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)
	body := decodeMap(t, rec)
	if len(body["directors"].([]interface{})) != 1 || len(body["actors"].([]interface{})) != 0 {
		t.Fatalf("credits = %v", body)
	}

	c, rec = newCtx(e, http.MethodGet, "/v1/films/1/cinemas", "", 0)
	withParams(c, "id", "1")
	if err := h.Cinemas(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)
	if items := decodeMap(t, rec)["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("items = %v", items)
	}
}

type fakeShowtimes struct{ list []model.Showtime }

func (f *fakeShowtimes) GetByID(_ context.Context, id uint64) (model.Showtime, error) {
	for _, s := range f.list {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Showtime{}, repository.ErrShowtimeNotFound
}

func (f *fakeShowtimes) ListByFilmAndCinema(_ context.Context, filmID, cinemaID uint64, from time.Time) ([]model.Showtime, error) {
	var out []model.Showtime
	for _, s := range f.list {
		if s.FilmID == filmID && s.CinemaID == cinemaID && !s.StartsAt.Before(from) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSeats struct {
	layout model.SeatLayout
	sold   map[uint64][]string
}

func (f *fakeSeats) LayoutByCinema(_ context.Context, id uint64) (model.SeatLayout, error) {
	if id != f.layout.CinemaID {
		return model.SeatLayout{}, repository.ErrLayoutNotFound
	}
	return f.layout, nil
}

func (f *fakeSeats) SoldSeats(_ context.Context, id uint64) ([]string, error) {
	return f.sold[id], nil
}

func TestShowtimes(t *testing.T) {
	e := newEcho()
	loc, _ := time.LoadLocation("Asia/Ho_Chi_Minh")
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	h := &ShowtimeHandler{
		Showtimes: &fakeShowtimes{list: []model.Showtime{
			{ID: 10, FilmID: 1, CinemaID: 2, StartsAt: time.Date(2024, 11, 30, 12, 0, 0, 0, time.UTC)},
			{ID: 11, FilmID: 1, CinemaID: 2, StartsAt: time.Date(2024, 12, 2, 3, 0, 0, 0, time.UTC)},
			{ID: 12, FilmID: 1, CinemaID: 2, StartsAt: time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC)},
			{ID: 13, FilmID: 1, CinemaID: 2, StartsAt: time.Date(2024, 12, 2, 18, 0, 0, 0, time.UTC)},
		}},
		Location: loc,
		Now:      func() time.Time { return now },
	}

	c, rec := newCtx(e, http.MethodGet, "/v1/films/1/cinemas/2/showtimes", "", 0)
	withParams(c, "id", "1", "cinemaId", "2")
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)
	body := decodeMap(t, rec)
	items := body["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("items = %v", items)
	}
	first := items[0].(map[string]interface{})
	if first["timeshow"] != "10:00" || first["dateshow"] != float64(2) {
		t.Fatalf("first = %v", first)
	}
	// 18:00 UTC on the 2nd is 01:00 on the 3rd in Ho Chi Minh City.
	if dates := body["dates"].([]interface{}); len(dates) != 2 {
		t.Fatalf("dates = %v", dates)
	}
}

func TestSeatMap(t *testing.T) {
	e := newEcho()
	h := &ShowtimeHandler{
		Showtimes: &fakeShowtimes{list: []model.Showtime{{ID: 10, FilmID: 1, CinemaID: 2}, {ID: 20, FilmID: 1, CinemaID: 3}}},
		Seats: &fakeSeats{
			layout: model.SeatLayout{CinemaID: 2, Rows: 2, Cols: 3, Price: 75000},
			sold:   map[uint64][]string{10: {"A2", "B3"}},
		},
	}

	t.Run("WithShowtime", func(t *testing.T) {
		c, rec := newCtx(e, http.MethodGet, "/v1/cinemas/2/seats?showtime=10", "", 0)
		withParams(c, "id", "2")
		if err := h.SeatMap(c); err != nil {
			t.Fatal(err)
		}
		wantStatus(t, rec, http.StatusOK)
		seats := decodeMap(t, rec)["seats"].([]interface{})
		if len(seats) != 6 {
			t.Fatalf("seats = %v", seats)
		}
		var sold []string
		for _, s := range seats {
			m := s.(map[string]interface{})
			if m["sold"] == true {
				sold = append(sold, m["label"].(string))
			}
		}
		if len(sold) != 2 || sold[0] != "A2" || sold[1] != "B3" {
			t.Fatalf("sold = %v", sold)
		}
	})

	t.Run("NoLayout", func(t *testing.T) {
		c, rec := newCtx(e, http.MethodGet, "/v1/cinemas/3/seats", "", 0)
		withParams(c, "id", "3")
		if err := h.SeatMap(c); err != nil {
			t.Fatal(err)
		}
		wantStatus(t, rec, http.StatusNotFound)
	})

	t.Run("ShowtimeElsewhere", func(t *testing.T) {
		c, rec := newCtx(e, http.MethodGet, "/v1/cinemas/2/seats?showtime=20", "", 0)
		withParams(c, "id", "2")
		if err := h.SeatMap(c); err != nil {
			t.Fatal(err)
		}
		wantStatus(t, rec, http.StatusBadRequest)
	})
}
