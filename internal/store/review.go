package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/google/uuid"
)

// ReviewPlanStore defines the interface for review plan persistence.
// Plans are keyed by (user_id, problem_id).
// Version: 1.0
type ReviewPlanStore interface {
	// Get retrieves the plan for a user and problem.
	// Returns ErrReviewPlanNotFound if the user has no plan for the problem.
	// NOTE: This method does NOT lock the row; concurrent writers are detected
	// by CompareAndSwap instead.
	Get(ctx context.Context, userID, problemID uuid.UUID) (*domain.ReviewPlan, error)

	// Upsert creates the plan or overwrites every mutable field of an existing one.
	// Used by enrollment, which always resets the plan.
	Upsert(ctx context.Context, plan *domain.ReviewPlan) error

	// CompareAndSwap writes plan only if the stored plan is still at
	// expectedStage and not completed. It reports whether the write happened;
	// false means another writer changed the plan first.
	CompareAndSwap(ctx context.Context, plan *domain.ReviewPlan, expectedStage int) (bool, error)

	// ListDue returns the user's plans that are not completed and have
	// next_review_at <= now, joined with the problem, oldest first.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.DueReview, error)

	// Stats summarises the user's plans as of now.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error)

	// WithTx returns a new ReviewPlanStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewPlanStore
}
