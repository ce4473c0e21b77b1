package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/iliyamo/cinebook/internal/logging"
	"github.com/iliyamo/cinebook/internal/mailer"
	"github.com/iliyamo/cinebook/internal/queue"
)

// Worker sends the ticket emails queued by the API.
func (r *runner) Worker(ctx context.Context, _ *cli.Command) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}
	m := mailer.New(cfg.Mail, logging.Component(r.log, "mailer"))
	c := &queue.Consumer{
		URL:     cfg.RabbitURL,
		Queue:   queue.TicketEmailQueue,
		Handler: m.HandleMessage,
		Log:     logging.Component(r.log, "consumer"),
	}
	r.log.Info("worker started", "queue", c.Queue, "smtp", cfg.Mail.Host)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.log.Info("worker stopped")
	return nil
}
