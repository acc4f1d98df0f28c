// Package daily selects the once-per-day challenge problem.
package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// DefaultLookupTimeout bounds one shared select-or-get round trip.
const DefaultLookupTimeout = 10 * time.Second

// Selector returns the daily challenge for a date, choosing and persisting
// one on first request. Every caller for the same date sees the same problem:
// in-process callers share one lookup and cross-process races are settled by
// the store's primary key on the date.
type Selector struct {
	problems   store.ProblemStore
	selections store.DailySelectionStore
	clock      clock.Clock
	location   *time.Location
	group      singleflight.Group
	logger     *slog.Logger

	lookupTimeout time.Duration
}

// NewSelector creates a Selector. loc defines the calendar used by Today.
func NewSelector(
	problems store.ProblemStore,
	selections store.DailySelectionStore,
	clk clock.Clock,
	loc *time.Location,
	logger *slog.Logger,
) *Selector {
	if problems == nil {
		panic("problems cannot be nil")
	}
	if selections == nil {
		panic("selections cannot be nil")
	}
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		problems:   problems,
		selections: selections,
		clock:      clk,
		location:   loc,
		logger:     logger.With(slog.String("component", "daily_selector")),

		lookupTimeout: DefaultLookupTimeout,
	}
}

// Today returns the current calendar date in the configured location.
func (s *Selector) Today() time.Time {
	return domain.CalendarDate(s.clock.Now(), s.location)
}

// SelectOrGetDaily returns the problem selected for date, selecting one at
// random from the published catalog if none exists yet. The time of day is
// ignored. Returns domain.ErrNotFound when nothing is published.
func (s *Selector) SelectOrGetDaily(ctx context.Context, date time.Time) (*domain.ProblemSummary, error) {
	day := domain.CalendarDate(date, date.Location())
	key := day.Format(domain.DateLayout)

	// The lookup is shared by every caller for key, so it runs detached from
	// ctx and each caller only stops waiting on its own cancellation.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookupTimeout)
		defer cancel()
		return s.selectOrGet(lookupCtx, day)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("daily lookup abandoned: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.FromContextOrDefault(ctx, s.logger).Debug("daily lookup shared", slog.String("date", key))
		}
		summary := *res.Val.(*domain.ProblemSummary)
		return &summary, nil
	}
}

func (s *Selector) selectOrGet(ctx context.Context, day time.Time) (*domain.ProblemSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("date", day.Format(domain.DateLayout)))

	existing, err := s.selections.GetByDate(ctx, day)
	if err == nil {
		return s.resolve(ctx, existing.ProblemID)
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to read daily selection", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read daily selection: %w", err)
	}

	pick, err := s.problems.RandomPublished(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("no published problems for daily challenge")
			return nil, fmt.Errorf("%w: no published problems", domain.ErrNotFound)
		}
		log.Error("failed to pick daily problem", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to pick daily problem: %w", err)
	}

	result, err := s.selections.InsertIfAbsent(ctx, &domain.DailySelection{
		Date:      day,
		ProblemID: pick.ID,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		log.Error("failed to persist daily selection", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to persist daily selection: %w", err)
	}

	if result.Inserted {
		log.Info("daily challenge selected", slog.String("problem_id", pick.ID.String()))
		return pick.Summary(), nil
	}

	log.Info("daily challenge chosen concurrently, discarding local pick",
		slog.String("discarded_problem_id", pick.ID.String()),
		slog.String("problem_id", result.Selection.ProblemID.String()))
	return s.resolve(ctx, result.Selection.ProblemID)
}

func (s *Selector) resolve(ctx context.Context, problemID uuid.UUID) (*domain.ProblemSummary, error) {
	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: daily problem %s", domain.ErrNotFound, problemID)
		}
		return nil, fmt.Errorf("failed to load daily problem: %w", err)
	}
	return problem.Summary(), nil
}
