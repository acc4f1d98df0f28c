package api

import (
	"context"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/practice"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/review"
	"github.com/google/uuid"
)

type mockDailySelector struct {
	today    time.Time
	SelectFn func(ctx context.Context, date time.Time) (*domain.ProblemSummary, error)
}

func (m *mockDailySelector) Today() time.Time { return m.today }

func (m *mockDailySelector) SelectOrGetDaily(ctx context.Context, date time.Time) (*domain.ProblemSummary, error) {
	return m.SelectFn(ctx, date)
}

type mockRecorder struct {
	RecordFn func(ctx context.Context, sub practice.Submission) (*domain.PracticeAttempt, error)
}

func (m *mockRecorder) Record(ctx context.Context, sub practice.Submission) (*domain.PracticeAttempt, error) {
	return m.RecordFn(ctx, sub)
}

type mockReviewService struct {
	SubmitFn func(ctx context.Context, userID, problemID uuid.UUID, answer review.Answer) (*domain.ReviewPlan, error)
	DueFn    func(ctx context.Context, userID uuid.UUID) ([]domain.DueReview, error)
	StatsFn  func(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error)
}

func (m *mockReviewService) Submit(
	ctx context.Context,
	userID, problemID uuid.UUID,
	answer review.Answer,
) (*domain.ReviewPlan, error) {
	return m.SubmitFn(ctx, userID, problemID, answer)
}

func (m *mockReviewService) Due(ctx context.Context, userID uuid.UUID) ([]domain.DueReview, error) {
	return m.DueFn(ctx, userID)
}

func (m *mockReviewService) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	return m.StatsFn(ctx, userID)
}

type mockLeaderboard struct {
	QueryFn func(ctx context.Context, periodType, periodKey string, limit int) ([]domain.RankedEntry, error)
}

func (m *mockLeaderboard) Query(
	ctx context.Context,
	periodType, periodKey string,
	limit int,
) ([]domain.RankedEntry, error) {
	return m.QueryFn(ctx, periodType, periodKey, limit)
}
