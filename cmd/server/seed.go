package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// demoFilms and demoCinemas are the catalogue inserted by `cinebook seed`.
var demoFilms = []model.Film{
	{Name: "Lật Mặt 7: Một Điều Ước", Genre: "Drama", Duration: "138", Country: "Vietnam", Audience: "T13", Status: model.FilmNowPlaying},
	{Name: "Dune: Part Two", Genre: "Sci-Fi", Duration: "166", Country: "USA", Audience: "T13", Status: model.FilmNowPlaying},
	{Name: "Inside Out 2", Genre: "Animation", Duration: "96", Country: "USA", Audience: "P", Status: model.FilmComingSoon},
}

var demoCinemas = []struct {
	cinema model.Cinema
	rows   int
	cols   int
	price  int64
}{
	{model.Cinema{Name: "CGV Vincom Landmark 81", Address: "208 Nguyễn Hữu Cảnh, Bình Thạnh"}, 8, 12, 90000},
	{model.Cinema{Name: "Galaxy Nguyễn Du", Address: "116 Nguyễn Du, Quận 1"}, 6, 10, 75000},
}

// Seed inserts demo films, cinemas, layouts and showtimes.
func (r *runner) Seed(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}
	db, err := r.openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	films := repository.NewFilmRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	seats := repository.NewSeatRepo(db)
	showtimes := repository.NewShowtimeRepo(db)

	loc := cfg.Location
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	days := int(cmd.Int("days"))

	for i := range demoCinemas {
		dc := &demoCinemas[i]
		if err := cinemas.Create(ctx, &dc.cinema); err != nil {
			return err
		}
		layout := &model.SeatLayout{CinemaID: dc.cinema.ID, Rows: dc.rows, Cols: dc.cols, Price: dc.price}
		if err := seats.SaveLayout(ctx, layout); err != nil {
			return fmt.Errorf("seat layout %s: %w", dc.cinema.Name, err)
		}
	}

	for i := range demoFilms {
		f := demoFilms[i]
		if f.Status == model.FilmNowPlaying {
			f.Premiere = today.AddDate(0, 0, -14)
		} else {
			f.Premiere = today.AddDate(0, 1, 0)
		}
		if err := films.Create(ctx, &f); err != nil {
			return fmt.Errorf("film %s: %w", f.Name, err)
		}
		if f.Status != model.FilmNowPlaying {
			continue
		}
		for room, dc := range demoCinemas {
			screening := model.CinemaScreening{Cinema: dc.cinema, Room: fmt.Sprintf("%d", room+1), Start: "10:00"}
			if err := cinemas.AddScreening(ctx, f.ID, screening); err != nil {
				return err
			}
			for d := 0; d < days; d++ {
				for _, hour := range []int{10, 14, 19} {
					st := &model.Showtime{
						FilmID:   f.ID,
						CinemaID: dc.cinema.ID,
						StartsAt: today.AddDate(0, 0, d).Add(time.Duration(hour) * time.Hour),
					}
					if err := showtimes.Create(ctx, st); err != nil {
						return err
					}
				}
			}
		}
		r.log.Info("seeded film", "id", f.ID, "slug", f.Slug)
	}
	r.log.Info("seed complete", "cinemas", len(demoCinemas), "films", len(demoFilms))
	return nil
}
