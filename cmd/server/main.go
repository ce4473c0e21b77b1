// Command cinebook runs the ticket booking API, the ticket email worker and
// the database maintenance tasks.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logging.New(os.Stderr, "info").Warn("dotenv", "err", err)
	}
	logger := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"))
	r := &runner{log: logger}

	app := &cli.Command{
		Name:     "cinebook",
		Usage:    "Movie ticket booking API",
		Commands: r.commands(),
		Action:   r.Serve,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("application error", "err", err)
	}
}

func (r *runner) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "serve",
			Usage: "Run the HTTP API and the film status scheduler",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "migrate",
					Usage: "Apply the schema before serving",
				},
			},
			Action: r.Serve,
		},
		{
			Name:   "worker",
			Usage:  "Consume the ticket.email queue and send emails over SMTP",
			Action: r.Worker,
		},
		{
			Name:   "migrate",
			Usage:  "Create missing tables",
			Action: r.Migrate,
		},
		{
			Name:  "seed",
			Usage: "Insert a demo catalogue into an empty database",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "days",
					Usage: "Days of showtimes to create",
					Value: 3,
				},
			},
			Action: r.Seed,
		},
	}
}
