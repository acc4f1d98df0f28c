package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter dispatches events to handlers in the calling goroutine.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// RegisterHandler appends handler to the dispatch list.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// EmitEvent runs every handler even when an earlier one fails and returns
// all handler errors joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *AttemptRecordedEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
