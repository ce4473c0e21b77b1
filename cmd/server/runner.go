package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/database"
	"github.com/iliyamo/cinebook/internal/logging"
)

// runner holds what every command shares.
type runner struct {
	log *log.Logger
}

// load reads the configuration and applies its log level.
func (r *runner) load() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	r.log.SetLevel(logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func (r *runner) openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema.
func (r *runner) Migrate(ctx context.Context, _ *cli.Command) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}
	db, err := r.openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return r.migrate(ctx, db)
}

func (r *runner) migrate(ctx context.Context, db *sql.DB) error {
	n, err := database.Migrate(ctx, db)
	if err != nil {
		return err
	}
	r.log.Info("schema applied", "statements", n)
	return nil
}
