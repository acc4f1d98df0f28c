package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/config"
	"github.com/Auroral0810/LaTexia-sub000/internal/redact"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

const pingTimeout = 5 * time.Second

// setupAppDatabase opens the connection pool and waits, with exponential
// backoff bounded by ConnectRetrySeconds, until the database answers a ping.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)

	if err := pingWithRetry(ctx, db,
		time.Duration(cfg.Database.ConnectRetrySeconds)*time.Second, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connection established",
		slog.Int("max_open_conns", cfg.Database.MaxOpenConns))
	return db, nil
}

// pinger is the part of *sql.DB pingWithRetry needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

func pingWithRetry(ctx context.Context, db pinger, maxElapsed time.Duration, logger *slog.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = maxElapsed

	var b backoff.BackOff = policy
	if maxElapsed <= 0 {
		b = &backoff.StopBackOff{}
	}

	op := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying",
			redact.Attr(err),
			slog.Duration("retry_in", wait))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
