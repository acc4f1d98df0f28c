package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestConstructorsPanicOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresProblemStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresAttemptStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresDailySelectionStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresReviewPlanStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresLeaderboardStore(nil, nil) })
}

func TestProblemStore_RandomPublished(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the picked problem", func(t *testing.T) {
		db, mock := newMock(t)
		id := uuid.New()
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY random()")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "difficulty", "score", "is_published", "created_at"}).
				AddRow(id.String(), "Integrals", "hard", 30, true, created))

		problem, err := NewPostgresProblemStore(db, nil).RandomPublished(ctx)

		require.NoError(t, err)
		assert.Equal(t, id, problem.ID)
		assert.Equal(t, domain.DifficultyHard, problem.Difficulty)
		assert.Equal(t, 30, problem.Score)
	})

	t.Run("empty catalog", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM problems")).WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresProblemStore(db, nil).RandomPublished(ctx)

		assert.ErrorIs(t, err, store.ErrProblemNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAttemptStore_Append(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("inserts", func(t *testing.T) {
		db, mock := newMock(t)
		attempt, err := domain.NewPracticeAttempt(uuid.New(), uuid.New(), true, 1200, domain.AttemptSourcePractice, now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO practice_attempts")).
			WithArgs(attempt.ID, attempt.UserID, attempt.ProblemID, true, int64(1200), "practice", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresAttemptStore(db, nil).Append(ctx, attempt))
	})

	t.Run("invalid attempt never reaches the database", func(t *testing.T) {
		db, _ := newMock(t)
		err := NewPostgresAttemptStore(db, nil).Append(ctx, &domain.PracticeAttempt{})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown problem maps to invalid entity", func(t *testing.T) {
		db, mock := newMock(t)
		attempt, err := domain.NewPracticeAttempt(uuid.New(), uuid.New(), false, 0, domain.AttemptSourcePractice, now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO practice_attempts")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "practice_attempts_problem_id_fkey"})

		log, buf := logger.NewTestLogger()
		err = NewPostgresAttemptStore(db, log).Append(ctx, attempt)

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		var storeErr *store.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "append", storeErr.Operation)
		assert.Contains(t, buf.String(), "attempt references unknown user or problem")
		assert.NotContains(t, buf.String(), "failed to append attempt")
	})
}

func TestDailySelectionStore_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 18, 0, 0, 1, 0, time.UTC)
	columns := []string{"date", "problem_id", "created_at"}

	t.Run("inserted", func(t *testing.T) {
		db, mock := newMock(t)
		pick := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (date) DO NOTHING")).
			WithArgs("2026-10-18", pick, created).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(date, pick.String(), created))

		res, err := NewPostgresDailySelectionStore(db, nil).InsertIfAbsent(ctx, &domain.DailySelection{
			Date: date, ProblemID: pick, CreatedAt: created,
		})

		require.NoError(t, err)
		assert.True(t, res.Inserted)
		assert.Equal(t, pick, res.Selection.ProblemID)
		assert.True(t, date.Equal(res.Selection.Date))
	})

	t.Run("already exists returns the winner", func(t *testing.T) {
		db, mock := newMock(t)
		pick, winner := uuid.New(), uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (date) DO NOTHING")).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery(regexp.QuoteMeta("FROM daily_selections WHERE date = $1::date")).
			WithArgs("2026-10-18").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(date, winner.String(), created))

		res, err := NewPostgresDailySelectionStore(db, nil).InsertIfAbsent(ctx, &domain.DailySelection{
			Date: date, ProblemID: pick, CreatedAt: created,
		})

		require.NoError(t, err)
		assert.False(t, res.Inserted)
		assert.Equal(t, winner, res.Selection.ProblemID)
	})

	t.Run("other failures propagate", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (date) DO NOTHING")).
			WillReturnError(errors.New("connection reset"))

		_, err := NewPostgresDailySelectionStore(db, nil).InsertIfAbsent(ctx, &domain.DailySelection{
			Date: date, ProblemID: uuid.New(), CreatedAt: created,
		})

		var storeErr *store.StoreError
		assert.True(t, errors.As(err, &storeErr))
	})
}

func TestDailySelectionStore_GetByDateNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM daily_selections")).WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresDailySelectionStore(db, nil).GetByDate(context.Background(), time.Now())

	assert.ErrorIs(t, err, store.ErrDailySelectionNotFound)
}

func TestReviewPlanStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := &domain.ReviewPlan{
		UserID:         uuid.New(),
		ProblemID:      uuid.New(),
		Stage:          3,
		NextReviewAt:   now.Add(96 * time.Hour),
		LastReviewedAt: &now,
		CreatedAt:      now.Add(-72 * time.Hour),
		UpdatedAt:      now,
	}

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"won the race", 1, true},
		{"lost the race", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectExec(regexp.QuoteMeta("AND stage = $8 AND is_completed = FALSE")).
				WithArgs(plan.UserID, plan.ProblemID, 3, plan.NextReviewAt, now, false, now, 2).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			swapped, err := NewPostgresReviewPlanStore(db, nil).CompareAndSwap(ctx, plan, 2)

			require.NoError(t, err)
			assert.Equal(t, tt.want, swapped)
		})
	}
}

func TestReviewPlanStore_GetNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM review_plans")).WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresReviewPlanStore(db, nil).Get(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, store.ErrReviewPlanNotFound)
}

func TestReviewPlanStore_Stats(t *testing.T) {
	db, mock := newMock(t)
	userID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY stage, is_completed")).
		WithArgs(userID, now).
		WillReturnRows(sqlmock.NewRows([]string{"stage", "is_completed", "count", "due"}).
			AddRow(1, false, 3, 2).
			AddRow(4, false, 1, 0).
			AddRow(6, true, 2, 0))

	stats, err := NewPostgresReviewPlanStore(db, nil).Stats(context.Background(), userID, now)

	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 4, stats.Active)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 2, stats.DueNow)
	assert.Equal(t, map[int]int{1: 3, 4: 1}, stats.ByStage)
}

func TestLeaderboardStore_Aggregate(t *testing.T) {
	db, mock := newMock(t)
	a, b := uuid.New(), uuid.New()
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY a.user_id")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "score", "correct_count", "attempt_count", "last_correct_at"}).
			AddRow(a.String(), 30, 2, 3, last).
			AddRow(b.String(), 0, 0, 4, nil))

	rows, err := NewPostgresLeaderboardStore(db, nil).Aggregate(context.Background(), &since)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, store.UserAggregate{UserID: a, Score: 30, CorrectCount: 2, AttemptCount: 3, LastCorrectAt: &last}, rows[0])
	assert.Nil(t, rows[1].LastCorrectAt)
	assert.Equal(t, 4, rows[1].AttemptCount)
}

func TestLeaderboardStore_UpsertSnapshots(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	snaps := []domain.LeaderboardSnapshot{
		{UserID: uuid.New(), PeriodType: "daily", PeriodKey: "2026-03-01", Score: 30, CorrectCount: 2, AttemptCount: 3, AccuracyRate: 66.67, Rank: 1, UpdatedAt: now},
		{UserID: uuid.New(), PeriodType: "daily", PeriodKey: "2026-03-01", Score: 30, CorrectCount: 3, AttemptCount: 3, AccuracyRate: 100, Rank: 2, UpdatedAt: now},
	}
	for _, s := range snaps {
		mock.ExpectExec(regexp.QuoteMeta("IS DISTINCT FROM")).
			WithArgs(s.UserID, s.PeriodType, s.PeriodKey, s.Score, s.CorrectCount, s.AttemptCount, s.AccuracyRate, s.Rank, s.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, NewPostgresLeaderboardStore(db, nil).UpsertSnapshots(context.Background(), snaps))
}

func TestLeaderboardStore_Query(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()
	updated := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.score DESC, s.rank ASC")).
		WithArgs("weekly", "2026-W09", 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"rank", "id", "username", "display_name", "avatar_url",
			"score", "correct_count", "attempt_count", "accuracy_rate", "updated_at",
		}).AddRow(1, id.String(), "ada", "Ada", "", 45, 3, 4, "75.00", updated))

	entries, err := NewPostgresLeaderboardStore(db, nil).Query(context.Background(), "weekly", "2026-W09", 10)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, id, entries[0].User.ID)
	assert.Equal(t, "ada", entries[0].User.Username)
	assert.InDelta(t, 75.0, entries[0].AccuracyRate, 0.001)
}
