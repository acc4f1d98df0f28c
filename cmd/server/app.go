package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/config"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/ebbinghaus"
	"github.com/Auroral0810/LaTexia-sub000/internal/events"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/postgres"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/redis"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/auth"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/daily"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/leaderboard"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/practice"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/review"
	"github.com/Auroral0810/LaTexia-sub000/internal/task"
	goredis "github.com/redis/go-redis/v9"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client
	clock  clock.Clock

	jwtService   *auth.JWTService
	eventEmitter *events.InMemoryEventEmitter

	selector   *daily.Selector
	recorder   *practice.Recorder
	reviews    *review.Scheduler
	aggregator *leaderboard.Aggregator
	refresh    *task.Scheduler
}

// newApplication wires every store and service. It does not touch the
// database; Run starts the background refresh and the HTTP server.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  clock.Real(),
	}
	loc := cfg.Location()

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth, app.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	problems := postgres.NewPostgresProblemStore(db, logger)
	attempts := postgres.NewPostgresAttemptStore(db, logger)
	selections := postgres.NewPostgresDailySelectionStore(db, logger)
	plans := postgres.NewPostgresReviewPlanStore(db, logger)
	board := postgres.NewPostgresLeaderboardStore(db, logger)

	app.selector = daily.NewSelector(problems, selections, app.clock, loc, logger)

	app.reviews = review.NewScheduler(review.Config{
		DB:       db,
		Plans:    plans,
		Attempts: attempts,
		Policy: ebbinghaus.NewServiceWithParams(ebbinghaus.NewParams(ebbinghaus.ParamsConfig{
			IntervalsDays: cfg.Review.IntervalsDays,
		})),
		Clock:      app.clock,
		MaxRetries: cfg.Review.MaxConflictRetries,
		Logger:     logger,
	})

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(review.NewEnrollmentHandler(app.reviews, logger))
	app.recorder = practice.NewRecorder(attempts, problems, app.eventEmitter, app.clock, logger)

	var cache leaderboard.Cache = leaderboard.NoopCache{}
	if cfg.Redis.URL != "" {
		app.redis, err = redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = redis.NewLeaderboardCache(app.redis,
			time.Duration(cfg.Leaderboard.CacheTTLSeconds)*time.Second, logger)
		logger.Info("leaderboard cache enabled")
	}

	app.aggregator = leaderboard.NewAggregator(leaderboard.Config{
		DB:           db,
		Store:        board,
		Cache:        cache,
		Clock:        app.clock,
		Location:     loc,
		DefaultLimit: cfg.Leaderboard.DefaultLimit,
		MaxLimit:     cfg.Leaderboard.MaxLimit,
		Logger:       logger,
	})

	app.refresh = task.NewScheduler(app.aggregator, task.Config{
		Interval: time.Duration(cfg.Leaderboard.RefreshIntervalMinutes) * time.Minute,
		Clock:    app.clock,
	}, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the leaderboard refresh and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.refresh.Start(ctx)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains the refresh cycle and closes connections.
func (app *application) cleanup() {
	if app.refresh != nil {
		app.refresh.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
