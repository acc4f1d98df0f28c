package store

import (
	"context"
	"database/sql"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/google/uuid"
)

// ProblemStore is the read-only view of the problem catalog the engine needs.
// Version: 1.0
type ProblemStore interface {
	// RandomPublished returns one published problem chosen uniformly at random.
	// Returns ErrProblemNotFound if no problem is published.
	RandomPublished(ctx context.Context) (*domain.Problem, error)

	// GetByID retrieves a problem by its ID, published or not.
	// Returns ErrProblemNotFound if the problem does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error)
}

// AttemptStore is the append-only practice attempt log.
// Version: 1.0
type AttemptStore interface {
	// Append records one attempt. Attempts are never updated or deleted.
	// Returns ErrInvalidEntity if the user or problem does not exist.
	Append(ctx context.Context, attempt *domain.PracticeAttempt) error

	// WithTx returns a new AttemptStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttemptStore
}
