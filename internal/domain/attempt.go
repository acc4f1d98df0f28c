package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttemptSource identifies the flow a practice attempt was submitted from.
type AttemptSource string

// Possible attempt sources
const (
	// AttemptSourcePractice is the main practice flow. Incorrect answers here
	// enroll the problem into the user's review schedule.
	AttemptSourcePractice AttemptSource = "practice"
	AttemptSourceDaily    AttemptSource = "daily"
	AttemptSourceReview   AttemptSource = "review"
)

// Attempt validation errors
var (
	ErrAttemptUserIDEmpty    = errors.New("attempt user ID cannot be empty")
	ErrAttemptProblemIDEmpty = errors.New("attempt problem ID cannot be empty")
	ErrAttemptTimeSpent      = errors.New("attempt time spent cannot be negative")
	ErrAttemptSource         = errors.New("invalid attempt source")
)

// PracticeAttempt is one immutable record in the attempt event log.
type PracticeAttempt struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	ProblemID   uuid.UUID     `json:"problem_id"`
	IsCorrect   bool          `json:"is_correct"`
	TimeSpentMs int64         `json:"time_spent_ms"`
	Source      AttemptSource `json:"source"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewPracticeAttempt creates a validated attempt stamped with now.
func NewPracticeAttempt(
	userID, problemID uuid.UUID,
	correct bool,
	timeSpentMs int64,
	source AttemptSource,
	now time.Time,
) (*PracticeAttempt, error) {
	attempt := &PracticeAttempt{
		ID:          uuid.New(),
		UserID:      userID,
		ProblemID:   problemID,
		IsCorrect:   correct,
		TimeSpentMs: timeSpentMs,
		Source:      source,
		CreatedAt:   now.UTC(),
	}

	if err := attempt.Validate(); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Validate checks the attempt fields. Errors wrap ErrValidation.
func (a *PracticeAttempt) Validate() error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrAttemptUserIDEmpty)
	}
	if a.ProblemID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrAttemptProblemIDEmpty)
	}
	if a.TimeSpentMs < 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrAttemptTimeSpent)
	}
	switch a.Source {
	case AttemptSourcePractice, AttemptSourceDaily, AttemptSourceReview:
	default:
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrAttemptSource, a.Source)
	}
	return nil
}
