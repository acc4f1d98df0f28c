package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// PostgresLeaderboardStore implements store.LeaderboardStore. It reads
// practice_attempts joined with problems and writes leaderboard_snapshots.
type PostgresLeaderboardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLeaderboardStore creates a leaderboard store. It panics if db is nil.
func NewPostgresLeaderboardStore(db store.DBTX, logger *slog.Logger) *PostgresLeaderboardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLeaderboardStore{
		db:     db,
		logger: logger.With(slog.String("component", "leaderboard_store")),
	}
}

var _ store.LeaderboardStore = (*PostgresLeaderboardStore)(nil)

// Aggregate implements store.LeaderboardStore.Aggregate.
func (s *PostgresLeaderboardStore) Aggregate(ctx context.Context, since *time.Time) ([]store.UserAggregate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT a.user_id,
			COALESCE(SUM(CASE WHEN a.is_correct THEN p.score ELSE 0 END), 0) AS score,
			COUNT(*) FILTER (WHERE a.is_correct) AS correct_count,
			COUNT(*) AS attempt_count,
			MAX(a.created_at) FILTER (WHERE a.is_correct) AS last_correct_at
		FROM practice_attempts a
		JOIN problems p ON p.id = a.problem_id
		WHERE $1::timestamptz IS NULL OR a.created_at >= $1::timestamptz
		GROUP BY a.user_id`

	rows, err := s.db.QueryContext(ctx, query, nullTime(since))
	if err != nil {
		log.Error("failed to aggregate attempts", slog.String("error", err.Error()))
		return nil, storeErr("practice_attempt", "aggregate", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	aggregates := []store.UserAggregate{}
	for rows.Next() {
		var agg store.UserAggregate
		var lastCorrect sql.NullTime
		if err := rows.Scan(&agg.UserID, &agg.Score, &agg.CorrectCount, &agg.AttemptCount, &lastCorrect); err != nil {
			return nil, storeErr("practice_attempt", "aggregate", err)
		}
		if lastCorrect.Valid {
			t := lastCorrect.Time
			agg.LastCorrectAt = &t
		}
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("practice_attempt", "aggregate", err)
	}

	log.Debug("aggregated attempts", slog.Int("users", len(aggregates)))
	return aggregates, nil
}

// UpsertSnapshots implements store.LeaderboardStore.UpsertSnapshots.
// The WHERE clause on the conflict branch skips rows whose values are
// unchanged, so their updated_at is preserved.
func (s *PostgresLeaderboardStore) UpsertSnapshots(ctx context.Context, snapshots []domain.LeaderboardSnapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO leaderboard_snapshots (
			user_id, period_type, period_key, score, correct_count,
			attempt_count, accuracy_rate, rank, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, period_type, period_key) DO UPDATE SET
			score = EXCLUDED.score,
			correct_count = EXCLUDED.correct_count,
			attempt_count = EXCLUDED.attempt_count,
			accuracy_rate = EXCLUDED.accuracy_rate,
			rank = EXCLUDED.rank,
			updated_at = EXCLUDED.updated_at
		WHERE (leaderboard_snapshots.score, leaderboard_snapshots.correct_count,
				leaderboard_snapshots.attempt_count, leaderboard_snapshots.accuracy_rate,
				leaderboard_snapshots.rank)
			IS DISTINCT FROM
			(EXCLUDED.score, EXCLUDED.correct_count, EXCLUDED.attempt_count,
				EXCLUDED.accuracy_rate, EXCLUDED.rank)`

	for i := range snapshots {
		snap := &snapshots[i]
		_, err := s.db.ExecContext(ctx, query,
			snap.UserID,
			snap.PeriodType,
			snap.PeriodKey,
			snap.Score,
			snap.CorrectCount,
			snap.AttemptCount,
			snap.AccuracyRate,
			snap.Rank,
			snap.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to upsert leaderboard snapshot",
				slog.String("user_id", snap.UserID.String()),
				slog.String("period_type", snap.PeriodType),
				slog.String("period_key", snap.PeriodKey),
				slog.String("error", err.Error()))
			return storeErr("leaderboard_snapshot", "upsert", err)
		}
	}
	return nil
}

// Query implements store.LeaderboardStore.Query.
func (s *PostgresLeaderboardStore) Query(
	ctx context.Context,
	periodType, periodKey string,
	limit int,
) ([]domain.RankedEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT s.rank, u.id, u.username, u.display_name, u.avatar_url,
			s.score, s.correct_count, s.attempt_count, s.accuracy_rate, s.updated_at
		FROM leaderboard_snapshots s
		JOIN users u ON u.id = s.user_id
		WHERE s.period_type = $1 AND s.period_key = $2
		ORDER BY s.score DESC, s.rank ASC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, periodType, periodKey, limit)
	if err != nil {
		log.Error("failed to query leaderboard",
			slog.String("period_type", periodType),
			slog.String("period_key", periodKey),
			slog.String("error", err.Error()))
		return nil, storeErr("leaderboard_snapshot", "query", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	entries := []domain.RankedEntry{}
	for rows.Next() {
		var e domain.RankedEntry
		if err := rows.Scan(
			&e.Rank,
			&e.User.ID,
			&e.User.Username,
			&e.User.DisplayName,
			&e.User.AvatarURL,
			&e.Score,
			&e.CorrectCount,
			&e.AttemptCount,
			&e.AccuracyRate,
			&e.UpdatedAt,
		); err != nil {
			return nil, storeErr("leaderboard_snapshot", "query", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("leaderboard_snapshot", "query", err)
	}
	return entries, nil
}

// WithTx implements store.LeaderboardStore.WithTx.
func (s *PostgresLeaderboardStore) WithTx(tx *sql.Tx) store.LeaderboardStore {
	return &PostgresLeaderboardStore{db: tx, logger: s.logger}
}
