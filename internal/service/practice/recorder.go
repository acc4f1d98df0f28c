// Package practice appends attempts to the attempt log and notifies the
// components that derive state from it.
package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/events"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// Submission is one answer to be recorded.
type Submission struct {
	UserID      uuid.UUID
	ProblemID   uuid.UUID
	Correct     bool
	TimeSpentMs int64
	Source      domain.AttemptSource
}

// Recorder appends attempts and emits AttemptRecordedEvent for each one.
type Recorder struct {
	attempts store.AttemptStore
	problems store.ProblemStore
	emitter  events.EventEmitter
	clock    clock.Clock
	logger   *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(
	attempts store.AttemptStore,
	problems store.ProblemStore,
	emitter events.EventEmitter,
	clk clock.Clock,
	logger *slog.Logger,
) *Recorder {
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if problems == nil {
		panic("problems cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		attempts: attempts,
		problems: problems,
		emitter:  emitter,
		clock:    clk,
		logger:   logger.With(slog.String("component", "practice_recorder")),
	}
}

// Record validates and appends the submission. The attempt is durable once
// Record returns it; handler failures during event emission are logged and
// do not undo it.
func (r *Recorder) Record(ctx context.Context, sub Submission) (*domain.PracticeAttempt, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if sub.Source == "" {
		sub.Source = domain.AttemptSourcePractice
	}
	attempt, err := domain.NewPracticeAttempt(
		sub.UserID, sub.ProblemID, sub.Correct, sub.TimeSpentMs, sub.Source, r.clock.Now())
	if err != nil {
		return nil, err
	}

	if _, err := r.problems.GetByID(ctx, sub.ProblemID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: problem %s", domain.ErrNotFound, sub.ProblemID)
		}
		return nil, fmt.Errorf("failed to load problem: %w", err)
	}

	if err := r.attempts.Append(ctx, attempt); err != nil {
		log.Error("failed to record attempt",
			slog.String("user_id", sub.UserID.String()),
			slog.String("problem_id", sub.ProblemID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	if err := r.emitter.EmitEvent(ctx, events.NewAttemptRecordedEvent(attempt, r.clock.Now())); err != nil {
		log.Warn("attempt recorded but event handling failed",
			slog.String("attempt_id", attempt.ID.String()),
			slog.String("error", err.Error()))
	}
	return attempt, nil
}
