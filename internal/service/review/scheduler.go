// Package review orchestrates per-user spaced-repetition plans on top of the
// pure policy in domain/ebbinghaus.
package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/ebbinghaus"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// DefaultMaxConflictRetries bounds how often Submit re-reads a plan after
// losing a compare-and-swap.
const DefaultMaxConflictRetries = 3

// Answer is the outcome of one review.
type Answer struct {
	Correct     bool
	TimeSpentMs int64
}

// Scheduler enrolls problems into review plans and applies review answers.
type Scheduler struct {
	db         store.TxBeginner
	plans      store.ReviewPlanStore
	attempts   store.AttemptStore
	policy     ebbinghaus.Service
	clock      clock.Clock
	maxRetries int
	logger     *slog.Logger
}

// Config holds the Scheduler's collaborators. DB may be nil, in which case
// the plan write and the review attempt are not wrapped in a transaction.
type Config struct {
	DB         store.TxBeginner
	Plans      store.ReviewPlanStore
	Attempts   store.AttemptStore
	Policy     ebbinghaus.Service
	Clock      clock.Clock
	MaxRetries int
	Logger     *slog.Logger
}

// NewScheduler creates a Scheduler. It panics if Plans or Attempts is nil.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Plans == nil {
		panic("plans cannot be nil")
	}
	if cfg.Attempts == nil {
		panic("attempts cannot be nil")
	}
	if cfg.Policy == nil {
		cfg.Policy = ebbinghaus.NewDefaultService()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = DefaultMaxConflictRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{
		db:         cfg.DB,
		plans:      cfg.Plans,
		attempts:   cfg.Attempts,
		policy:     cfg.Policy,
		clock:      cfg.Clock,
		maxRetries: cfg.MaxRetries,
		logger:     cfg.Logger.With(slog.String("component", "review_scheduler")),
	}
}

// Enroll creates the user's plan for a problem, or resets an existing one
// (completed or not) to stage 1 due one day from now.
func (s *Scheduler) Enroll(ctx context.Context, userID, problemID uuid.UUID) (*domain.ReviewPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("problem_id", problemID.String()))

	if err := validateIDs(userID, problemID); err != nil {
		return nil, err
	}

	current, err := s.plans.Get(ctx, userID, problemID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		current = &domain.ReviewPlan{UserID: userID, ProblemID: problemID}
	case err != nil:
		log.Error("failed to load review plan", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load review plan: %w", err)
	}

	plan, err := s.policy.Enroll(current, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to enroll review plan: %w", err)
	}
	if err := s.plans.Upsert(ctx, plan); err != nil {
		log.Error("failed to save review plan", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save review plan: %w", err)
	}

	log.Info("problem enrolled for review", slog.Time("next_review_at", plan.NextReviewAt))
	return plan, nil
}

// Submit applies a review answer to the user's plan and records it in the
// attempt log as a review attempt. Concurrent submissions for the same plan
// are serialised by a compare-and-swap on the stage; a lost race is retried
// against the fresh plan and reported as domain.ErrConflict once retries run out.
//
// Returns domain.ErrNotFound if the user has no plan for the problem and
// domain.ErrPlanCompleted if the plan has already graduated.
func (s *Scheduler) Submit(
	ctx context.Context,
	userID, problemID uuid.UUID,
	answer Answer,
) (*domain.ReviewPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("problem_id", problemID.String()),
		slog.Bool("correct", answer.Correct))

	if err := validateIDs(userID, problemID); err != nil {
		return nil, err
	}
	if answer.TimeSpentMs < 0 {
		return nil, fmt.Errorf("%w: time spent cannot be negative", domain.ErrValidation)
	}

	for try := 1; try <= s.maxRetries; try++ {
		current, err := s.plans.Get(ctx, userID, problemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: no review plan for problem %s", domain.ErrNotFound, problemID)
			}
			log.Error("failed to load review plan", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to load review plan: %w", err)
		}

		now := s.clock.Now()
		next, err := s.policy.Advance(current, answer.Correct, now)
		if err != nil {
			if errors.Is(err, domain.ErrPlanCompleted) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to advance review plan: %w", err)
		}

		swapped, err := s.write(ctx, current.Stage, next, answer, now)
		if err != nil {
			log.Error("failed to save review", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to save review: %w", err)
		}
		if swapped {
			log.Info("review recorded",
				slog.Int("stage", next.Stage),
				slog.Bool("completed", next.IsCompleted))
			return next, nil
		}

		log.Debug("review plan changed concurrently, retrying", slog.Int("attempt", try))
	}

	log.Warn("review plan contention exhausted retries", slog.Int("retries", s.maxRetries))
	return nil, fmt.Errorf("%w: review plan for problem %s", domain.ErrConflict, problemID)
}

// write performs the compare-and-swap and, when it wins, appends the review
// attempt in the same transaction.
func (s *Scheduler) write(
	ctx context.Context,
	expectedStage int,
	plan *domain.ReviewPlan,
	answer Answer,
	now time.Time,
) (bool, error) {
	attempt, err := domain.NewPracticeAttempt(
		plan.UserID, plan.ProblemID, answer.Correct, answer.TimeSpentMs, domain.AttemptSourceReview, now)
	if err != nil {
		return false, err
	}

	apply := func(ctx context.Context, plans store.ReviewPlanStore, attempts store.AttemptStore) (bool, error) {
		swapped, err := plans.CompareAndSwap(ctx, plan, expectedStage)
		if err != nil || !swapped {
			return false, err
		}
		return true, attempts.Append(ctx, attempt)
	}

	if s.db == nil {
		return apply(ctx, s.plans, s.attempts)
	}

	var swapped bool
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var txErr error
		swapped, txErr = apply(ctx, s.plans.WithTx(tx), s.attempts.WithTx(tx))
		return txErr
	})
	return swapped, err
}

// Due lists the user's plans that are due now, oldest first.
func (s *Scheduler) Due(ctx context.Context, userID uuid.UUID) ([]domain.DueReview, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidID)
	}
	due, err := s.plans.ListDue(ctx, userID, s.clock.Now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due reviews",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list due reviews: %w", err)
	}
	return due, nil
}

// Stats summarises the user's plans as of now.
func (s *Scheduler) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidID)
	}
	stats, err := s.plans.Stats(ctx, userID, s.clock.Now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute review stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to compute review stats: %w", err)
	}
	return stats, nil
}

func validateIDs(userID, problemID uuid.UUID) error {
	if userID == uuid.Nil || problemID == uuid.Nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidID)
	}
	return nil
}
