// Package main is the entry point of the practice progression service. It
// serves the daily challenge, review schedule and leaderboard endpoints and
// runs the periodic leaderboard refresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Auroral0810/LaTexia-sub000/internal/config"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("practice server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server, cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Daily.Timezone),
		slog.Bool("redis_enabled", cfg.Redis.URL != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
