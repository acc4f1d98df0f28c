package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// EventTypeAttemptRecorded is emitted after an attempt is appended to the log.
const EventTypeAttemptRecorded = "attempt.recorded"

// AttemptRecordedEvent announces one appended practice attempt.
type AttemptRecordedEvent struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	Attempt   domain.PracticeAttempt `json:"attempt"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewAttemptRecordedEvent wraps a copy of attempt in a new event.
func NewAttemptRecordedEvent(attempt *domain.PracticeAttempt, now time.Time) *AttemptRecordedEvent {
	return &AttemptRecordedEvent{
		ID:        uuid.New(),
		Type:      EventTypeAttemptRecorded,
		Attempt:   *attempt,
		CreatedAt: now.UTC(),
	}
}

// EventHandler processes attempt events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *AttemptRecordedEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *AttemptRecordedEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *AttemptRecordedEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes attempt events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *AttemptRecordedEvent) error
}
