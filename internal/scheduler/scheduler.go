// Package scheduler runs the background job that moves films from coming
// soon to now playing once their premiere date arrives.
package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// Promoter flips coming soon films whose premiere is on or before today.
type Promoter interface {
	PromoteReleased(ctx context.Context, today time.Time) (int64, error)
}

// FilmStatusJob is one run of the promotion.
type FilmStatusJob struct {
	Films    Promoter
	Log      *log.Logger
	Location *time.Location
	Now      func() time.Time
}

// Run promotes released films using today's date in the job's zone.
func (j *FilmStatusJob) Run(ctx context.Context) (int64, error) {
	loc := j.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	t := now().In(loc)
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)

	n, err := j.Films.PromoteReleased(ctx, today)
	if err != nil {
		j.Log.Error("film status update failed", "err", err)
		return 0, err
	}
	j.Log.Info("film status updated", "date", today.Format("2006-01-02"), "promoted", n)
	return n, nil
}

// Scheduler wraps the gocron scheduler running FilmStatusJob.
type Scheduler struct {
	s gocron.Scheduler
}

// Start schedules job daily at 00:05 in its zone and also runs it right
// away. ctx is passed to every run.
func Start(ctx context.Context, job *FilmStatusJob) (*Scheduler, error) {
	loc := job.Location
	if loc == nil {
		loc = time.UTC
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() { _, _ = job.Run(ctx) }),
		gocron.WithName("promote-released-films"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	s.Start()
	return &Scheduler{s: s}, nil
}

// Stop waits for a running job and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}
