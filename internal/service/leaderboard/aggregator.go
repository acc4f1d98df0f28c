// Package leaderboard refreshes ranked snapshots for every leaderboard window
// and serves them to readers.
package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// Query limits applied when the caller does not configure their own.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Config holds the Aggregator's collaborators and limits.
type Config struct {
	// DB, when set, makes each window's snapshot upsert one transaction.
	DB           store.TxBeginner
	Store        store.LeaderboardStore
	Cache        Cache
	Clock        clock.Clock
	Location     *time.Location
	DefaultLimit int
	MaxLimit     int
	Logger       *slog.Logger
}

// Aggregator recomputes leaderboard snapshots from the attempt log.
type Aggregator struct {
	db           store.TxBeginner
	store        store.LeaderboardStore
	cache        Cache
	clock        clock.Clock
	location     *time.Location
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewAggregator creates an Aggregator. It panics if Store is nil.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.Store == nil {
		panic("store cannot be nil")
	}
	if cfg.Cache == nil {
		cfg.Cache = NoopCache{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = MaxLimit
	}
	if cfg.DefaultLimit < 1 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(DefaultLimit, cfg.MaxLimit)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Aggregator{
		db:           cfg.DB,
		store:        cfg.Store,
		cache:        cfg.Cache,
		clock:        cfg.Clock,
		location:     cfg.Location,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		logger:       cfg.Logger.With(slog.String("component", "leaderboard_aggregator")),
	}
}

// RefreshAll recomputes the current period of every window type. Windows are
// independent: a failing window is logged and reported in a
// *PartialAggregationError while the others are still refreshed.
func (a *Aggregator) RefreshAll(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, a.logger)
	now := a.clock.Now()
	started := time.Now()

	var failures []PeriodFailure
	for _, t := range period.Types {
		p, err := period.ForTime(t, now, a.location)
		if err == nil {
			err = a.refresh(ctx, p, now)
		}
		if err != nil {
			log.Error("leaderboard window refresh failed",
				slog.String("period", p.String()),
				slog.String("period_type", string(t)),
				slog.String("error", err.Error()))
			failures = append(failures, PeriodFailure{Period: p, Err: err})
		}
	}

	log.Info("leaderboard refresh finished",
		slog.Int("windows", len(period.Types)),
		slog.Int("failed", len(failures)),
		slog.Duration("elapsed", time.Since(started)))

	if len(failures) > 0 {
		return &PartialAggregationError{Failures: failures}
	}
	return nil
}

// Name identifies the refresh job in scheduler logs.
func (a *Aggregator) Name() string { return "leaderboard_refresh" }

// Run refreshes every window. It lets the Aggregator be scheduled as a
// periodic job.
func (a *Aggregator) Run(ctx context.Context) error { return a.RefreshAll(ctx) }

func (a *Aggregator) refresh(ctx context.Context, p period.Period, now time.Time) error {
	log := logger.FromContextOrDefault(ctx, a.logger).With(slog.String("period", p.String()))

	var since *time.Time
	start, bounded, err := period.WindowStart(p.Type, now, a.location)
	if err != nil {
		return err
	}
	if bounded {
		since = &start
	}

	rows, err := a.store.Aggregate(ctx, since)
	if err != nil {
		return fmt.Errorf("aggregate attempts: %w", err)
	}
	snapshots := Rank(p, rows, now)

	if err := a.upsert(ctx, snapshots); err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}

	if err := a.cache.Invalidate(ctx, p); err != nil {
		log.Warn("failed to invalidate leaderboard cache", slog.String("error", err.Error()))
	}

	log.Debug("leaderboard window refreshed", slog.Int("users", len(snapshots)))
	return nil
}

func (a *Aggregator) upsert(ctx context.Context, snapshots []domain.LeaderboardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if a.db == nil {
		return a.store.UpsertSnapshots(ctx, snapshots)
	}
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		return a.store.WithTx(tx).UpsertSnapshots(ctx, snapshots)
	})
}

// Query returns the top entries of a period. An empty key selects the
// current period of periodType. limit <= 0 selects the default limit and
// larger values are capped at the maximum.
func (a *Aggregator) Query(
	ctx context.Context,
	periodType, periodKey string,
	limit int,
) ([]domain.RankedEntry, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	t, err := period.ParseType(periodType)
	if err != nil {
		return nil, err
	}
	p := period.Period{Type: t, Key: periodKey}
	if p.Key == "" {
		if p, err = period.ForTime(t, a.clock.Now(), a.location); err != nil {
			return nil, err
		}
	} else if err := period.ValidateKey(t, p.Key); err != nil {
		return nil, err
	}
	limit = a.clampLimit(limit)

	if cached, ok, err := a.cache.Get(ctx, p, limit); err != nil {
		log.Warn("leaderboard cache read failed", slog.String("error", err.Error()))
	} else if ok {
		return cached, nil
	}

	entries, err := a.store.Query(ctx, string(p.Type), p.Key, limit)
	if err != nil {
		log.Error("failed to query leaderboard",
			slog.String("period", p.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	if err := a.cache.Set(ctx, p, limit, entries); err != nil {
		log.Warn("leaderboard cache write failed", slog.String("error", err.Error()))
	}
	return entries, nil
}

func (a *Aggregator) clampLimit(limit int) int {
	if limit <= 0 {
		return a.defaultLimit
	}
	return min(limit, a.maxLimit)
}
