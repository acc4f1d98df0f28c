package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// PostgresAttemptStore implements store.AttemptStore on practice_attempts.
type PostgresAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttemptStore creates an attempt store. It panics if db is nil.
func NewPostgresAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

// Append implements store.AttemptStore.Append.
func (s *PostgresAttemptStore) Append(ctx context.Context, attempt *domain.PracticeAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO practice_attempts (id, user_id, problem_id, is_correct, time_spent_ms, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.ProblemID,
		attempt.IsCorrect,
		attempt.TimeSpentMs,
		string(attempt.Source),
		attempt.CreatedAt,
	)
	if IsForeignKeyViolation(err) {
		log.Warn("attempt references unknown user or problem",
			slog.String("user_id", attempt.UserID.String()),
			slog.String("problem_id", attempt.ProblemID.String()))
		return storeErr("practice_attempt", "append", err)
	}
	if err != nil {
		log.Error("failed to append attempt",
			slog.String("user_id", attempt.UserID.String()),
			slog.String("problem_id", attempt.ProblemID.String()),
			slog.String("error", err.Error()))
		return storeErr("practice_attempt", "append", err)
	}

	log.Debug("attempt appended",
		slog.String("attempt_id", attempt.ID.String()),
		slog.Bool("correct", attempt.IsCorrect),
		slog.String("source", string(attempt.Source)))
	return nil
}

// WithTx implements store.AttemptStore.WithTx.
func (s *PostgresAttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return &PostgresAttemptStore{db: tx, logger: s.logger}
}
