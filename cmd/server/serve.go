package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v3"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/logging"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/queue"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/router"
	"github.com/iliyamo/cinebook/internal/scheduler"
	"github.com/iliyamo/cinebook/internal/service"
)

// Serve runs the API until the context is cancelled.
func (r *runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}
	db, err := r.openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if cmd.Bool("migrate") {
		if err := r.migrate(ctx, db); err != nil {
			return err
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		r.log.Warn("redis unavailable, using in-process session cache; response cache and rate limit disabled", "err", err)
	} else {
		defer rdb.Close()
	}

	var (
		users         = repository.NewUserRepo(db)
		tokens        = repository.NewTokenRepo(db)
		films         = repository.NewFilmRepo(db)
		ratings       = repository.NewRatingRepo(db)
		credits       = repository.NewCreditRepo(db)
		cinemas       = repository.NewCinemaRepo(db)
		showtimes     = repository.NewShowtimeRepo(db)
		seats         = repository.NewSeatRepo(db)
		orders        = repository.NewOrderRepo(db)
		notifications = repository.NewNotificationRepo(db)
	)

	sessions := service.NewSessionStore(rdb, cfg.SessionTTL)
	publisher := queue.NewPublisher(cfg.RabbitURL, logging.Component(r.log, "publisher"))
	booking := &service.BookingService{
		Films:         films,
		Cinemas:       cinemas,
		Showtimes:     showtimes,
		Seats:         seats,
		Orders:        orders,
		Users:         users,
		Notifications: notifications,
		Notifier:      service.NewTicketNotifier(cfg, publisher),
		Log:           logging.Component(r.log, "booking"),
		Location:      cfg.Location,
	}

	cacheCfg := config.LoadCacheConfig()
	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, tokens, sessions, r.log),
		Profile: handler.NewProfileHandler(cfg, users, sessions, r.log),
		Films: &handler.FilmHandler{
			Films: films, Ratings: ratings, People: credits, Screenings: cinemas,
			Log: r.log, Cache: rdb, CachePrefix: cacheCfg.Prefix,
		},
		Showtimes:     &handler.ShowtimeHandler{Showtimes: showtimes, Seats: seats, Location: cfg.Location},
		Orders:        &handler.OrderHandler{Orders: booking, Location: cfg.Location},
		Tickets:       &handler.TicketHandler{Tickets: orders, Location: cfg.Location},
		History:       &handler.HistoryHandler{Tickets: orders, Location: cfg.Location},
		Notify:        &handler.NotifyHandler{Publisher: publisher, Log: r.log},
		Notifications: &handler.NotificationHandler{Notifications: notifications},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logging.Component(r.log, "http")))
	router.Register(e, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	if cfg.SchedulerEnabled {
		job := &scheduler.FilmStatusJob{
			Films:    films,
			Log:      logging.Component(r.log, "scheduler"),
			Location: cfg.Location,
		}
		s, err := scheduler.Start(ctx, job)
		if err != nil {
			return err
		}
		defer func() { _ = s.Stop() }()
	}

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		r.log.Info("listening", "addr", addr, "env", cfg.Env)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	r.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
