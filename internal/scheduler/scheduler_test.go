package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/cinebook/internal/logging"
)

type fakePromoter struct {
	mu    sync.Mutex
	dates []time.Time
	n     int64
	err   error
	ran   chan struct{}
}

func (f *fakePromoter) PromoteReleased(_ context.Context, today time.Time) (int64, error) {
	f.mu.Lock()
	f.dates = append(f.dates, today)
	f.mu.Unlock()
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	return f.n, f.err
}

func TestFilmStatusJobRun(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)

	t.Run("UsesLocalDate", func(t *testing.T) {
		p := &fakePromoter{n: 3}
		job := &FilmStatusJob{
			Films:    p,
			Log:      logging.Discard(),
			Location: ict,
			// 18:00 UTC on Jan 31 is already Feb 1 in ICT.
			Now: func() time.Time { return time.Date(2025, 1, 31, 18, 0, 0, 0, time.UTC) },
		}
		n, err := job.Run(context.Background())
		if err != nil || n != 3 {
			t.Fatalf("run: %d %v", n, err)
		}
		if got := p.dates[0].Format("2006-01-02"); got != "2025-02-01" {
			t.Errorf("expected 2025-02-01, got %s", got)
		}
	})

	t.Run("PropagatesError", func(t *testing.T) {
		p := &fakePromoter{err: errors.New("db down")}
		job := &FilmStatusJob{Films: p, Log: logging.Discard()}
		if _, err := job.Run(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestStartRunsImmediately(t *testing.T) {
	p := &fakePromoter{ran: make(chan struct{}, 1)}
	s, err := Start(context.Background(), &FilmStatusJob{Films: p, Log: logging.Discard(), Location: time.UTC})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-p.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run at startup")
	}
}
