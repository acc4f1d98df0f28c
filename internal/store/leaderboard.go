package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/google/uuid"
)

// UserAggregate is one user's totals over an attempt window.
type UserAggregate struct {
	UserID       uuid.UUID
	Score        int
	CorrectCount int
	AttemptCount int

	// LastCorrectAt is the latest correct attempt in the window, nil when the
	// user has none. Used to break score ties.
	LastCorrectAt *time.Time
}

// LeaderboardStore reads the attempt log for aggregation and persists ranked snapshots.
// Version: 1.0
type LeaderboardStore interface {
	// Aggregate groups attempts created at or after since (all attempts when
	// since is nil) by user, scoring correct attempts with the problem score.
	// Row order is unspecified.
	Aggregate(ctx context.Context, since *time.Time) ([]UserAggregate, error)

	// UpsertSnapshots writes snapshots keyed by (user_id, period_type, period_key).
	// Rows whose values are unchanged keep their previous updated_at.
	// Callers should run it inside a transaction so a period is replaced atomically.
	UpsertSnapshots(ctx context.Context, snapshots []domain.LeaderboardSnapshot) error

	// Query returns the top limit snapshot rows of a period joined with user
	// profiles, ordered by rank.
	Query(ctx context.Context, periodType, periodKey string, limit int) ([]domain.RankedEntry, error)

	// WithTx returns a new LeaderboardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) LeaderboardStore
}
