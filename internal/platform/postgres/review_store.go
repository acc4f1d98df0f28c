package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

const reviewPlanColumns = `user_id, problem_id, stage, next_review_at, last_reviewed_at, is_completed, created_at, updated_at`

// PostgresReviewPlanStore implements store.ReviewPlanStore on review_plans.
type PostgresReviewPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewPlanStore creates a review plan store. It panics if db is nil.
func NewPostgresReviewPlanStore(db store.DBTX, logger *slog.Logger) *PostgresReviewPlanStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewPlanStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_plan_store")),
	}
}

var _ store.ReviewPlanStore = (*PostgresReviewPlanStore)(nil)

// Get implements store.ReviewPlanStore.Get.
func (s *PostgresReviewPlanStore) Get(ctx context.Context, userID, problemID uuid.UUID) (*domain.ReviewPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + reviewPlanColumns + ` FROM review_plans WHERE user_id = $1 AND problem_id = $2`

	var plan domain.ReviewPlan
	var lastReviewed sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID, problemID).Scan(
		&plan.UserID,
		&plan.ProblemID,
		&plan.Stage,
		&plan.NextReviewAt,
		&lastReviewed,
		&plan.IsCompleted,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrReviewPlanNotFound
	}
	if err != nil {
		log.Error("failed to get review plan",
			slog.String("user_id", userID.String()),
			slog.String("problem_id", problemID.String()),
			slog.String("error", err.Error()))
		return nil, storeErr("review_plan", "get", err)
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		plan.LastReviewedAt = &t
	}
	return &plan, nil
}

// Upsert implements store.ReviewPlanStore.Upsert.
func (s *PostgresReviewPlanStore) Upsert(ctx context.Context, plan *domain.ReviewPlan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_plans (` + reviewPlanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, problem_id) DO UPDATE SET
			stage = EXCLUDED.stage,
			next_review_at = EXCLUDED.next_review_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			is_completed = EXCLUDED.is_completed,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		plan.UserID,
		plan.ProblemID,
		plan.Stage,
		plan.NextReviewAt,
		nullTime(plan.LastReviewedAt),
		plan.IsCompleted,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert review plan",
			slog.String("user_id", plan.UserID.String()),
			slog.String("problem_id", plan.ProblemID.String()),
			slog.String("error", err.Error()))
		return storeErr("review_plan", "upsert", err)
	}
	return nil
}

// CompareAndSwap implements store.ReviewPlanStore.CompareAndSwap.
func (s *PostgresReviewPlanStore) CompareAndSwap(
	ctx context.Context,
	plan *domain.ReviewPlan,
	expectedStage int,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_plans SET
			stage = $3,
			next_review_at = $4,
			last_reviewed_at = $5,
			is_completed = $6,
			updated_at = $7
		WHERE user_id = $1 AND problem_id = $2
			AND stage = $8 AND is_completed = FALSE`

	result, err := s.db.ExecContext(ctx, query,
		plan.UserID,
		plan.ProblemID,
		plan.Stage,
		plan.NextReviewAt,
		nullTime(plan.LastReviewedAt),
		plan.IsCompleted,
		plan.UpdatedAt,
		expectedStage,
	)
	if err != nil {
		log.Error("failed to update review plan",
			slog.String("user_id", plan.UserID.String()),
			slog.String("problem_id", plan.ProblemID.String()),
			slog.String("error", err.Error()))
		return false, storeErr("review_plan", "compare_and_swap", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, storeErr("review_plan", "compare_and_swap", err)
	}
	return n == 1, nil
}

// ListDue implements store.ReviewPlanStore.ListDue.
func (s *PostgresReviewPlanStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]domain.DueReview, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT rp.user_id, rp.problem_id, rp.stage, rp.next_review_at, rp.last_reviewed_at,
			rp.is_completed, rp.created_at, rp.updated_at,
			p.title, p.difficulty, p.score
		FROM review_plans rp
		JOIN problems p ON p.id = rp.problem_id
		WHERE rp.user_id = $1
			AND rp.is_completed = FALSE
			AND rp.next_review_at <= $2
		ORDER BY rp.next_review_at ASC, rp.problem_id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		log.Error("failed to query due reviews",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, storeErr("review_plan", "list_due", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	due := []domain.DueReview{}
	for rows.Next() {
		var d domain.DueReview
		var lastReviewed sql.NullTime
		var difficulty string
		if err := rows.Scan(
			&d.Plan.UserID,
			&d.Plan.ProblemID,
			&d.Plan.Stage,
			&d.Plan.NextReviewAt,
			&lastReviewed,
			&d.Plan.IsCompleted,
			&d.Plan.CreatedAt,
			&d.Plan.UpdatedAt,
			&d.Problem.Title,
			&difficulty,
			&d.Problem.Score,
		); err != nil {
			return nil, storeErr("review_plan", "list_due", err)
		}
		if lastReviewed.Valid {
			t := lastReviewed.Time
			d.Plan.LastReviewedAt = &t
		}
		d.Problem.ID = d.Plan.ProblemID
		d.Problem.Difficulty = domain.Difficulty(difficulty)
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("review_plan", "list_due", err)
	}
	return due, nil
}

// Stats implements store.ReviewPlanStore.Stats.
func (s *PostgresReviewPlanStore) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT stage, is_completed, COUNT(*), COUNT(*) FILTER (WHERE NOT is_completed AND next_review_at <= $2)
		FROM review_plans
		WHERE user_id = $1
		GROUP BY stage, is_completed`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		log.Error("failed to query review stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, storeErr("review_plan", "stats", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	stats := &domain.ReviewStats{ByStage: make(map[int]int)}
	for rows.Next() {
		var stage, count, due int
		var completed bool
		if err := rows.Scan(&stage, &completed, &count, &due); err != nil {
			return nil, storeErr("review_plan", "stats", err)
		}
		stats.Total += count
		stats.DueNow += due
		if completed {
			stats.Completed += count
			continue
		}
		stats.Active += count
		stats.ByStage[stage] += count
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("review_plan", "stats", err)
	}
	return stats, nil
}

// WithTx implements store.ReviewPlanStore.WithTx.
func (s *PostgresReviewPlanStore) WithTx(tx *sql.Tx) store.ReviewPlanStore {
	return &PostgresReviewPlanStore{db: tx, logger: s.logger}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
