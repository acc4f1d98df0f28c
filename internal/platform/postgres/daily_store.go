package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// PostgresDailySelectionStore implements store.DailySelectionStore. The
// primary key on daily_selections.date arbitrates concurrent first selections.
type PostgresDailySelectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDailySelectionStore creates a daily selection store. It panics if db is nil.
func NewPostgresDailySelectionStore(db store.DBTX, logger *slog.Logger) *PostgresDailySelectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDailySelectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "daily_selection_store")),
	}
}

var _ store.DailySelectionStore = (*PostgresDailySelectionStore)(nil)

// GetByDate implements store.DailySelectionStore.GetByDate.
func (s *PostgresDailySelectionStore) GetByDate(ctx context.Context, date time.Time) (*domain.DailySelection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT date, problem_id, created_at FROM daily_selections WHERE date = $1::date`

	sel, err := scanDailySelection(s.db.QueryRowContext(ctx, query, date.Format(domain.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDailySelectionNotFound
	}
	if err != nil {
		log.Error("failed to get daily selection",
			slog.String("date", date.Format(domain.DateLayout)),
			slog.String("error", err.Error()))
		return nil, storeErr("daily_selection", "get", err)
	}
	return sel, nil
}

// InsertIfAbsent implements store.DailySelectionStore.InsertIfAbsent.
// ON CONFLICT DO NOTHING returns no row when the date is taken, in which case
// the winner's row is read back.
func (s *PostgresDailySelectionStore) InsertIfAbsent(
	ctx context.Context,
	selection *domain.DailySelection,
) (store.InsertResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	day := selection.Date.Format(domain.DateLayout)

	query := `
		INSERT INTO daily_selections (date, problem_id, created_at)
		VALUES ($1::date, $2, $3)
		ON CONFLICT (date) DO NOTHING
		RETURNING date, problem_id, created_at`

	inserted, err := scanDailySelection(s.db.QueryRowContext(ctx, query, day, selection.ProblemID, selection.CreatedAt))
	switch {
	case err == nil:
		log.Info("daily selection persisted",
			slog.String("date", day),
			slog.String("problem_id", inserted.ProblemID.String()))
		return store.InsertResult{Selection: inserted, Inserted: true}, nil
	case !errors.Is(err, sql.ErrNoRows):
		log.Error("failed to insert daily selection",
			slog.String("date", day),
			slog.String("error", err.Error()))
		return store.InsertResult{}, storeErr("daily_selection", "insert", err)
	}

	existing, err := s.GetByDate(ctx, selection.Date)
	if err != nil {
		return store.InsertResult{}, err
	}
	log.Debug("daily selection already present",
		slog.String("date", day),
		slog.String("problem_id", existing.ProblemID.String()))
	return store.InsertResult{Selection: existing, Inserted: false}, nil
}

func scanDailySelection(row *sql.Row) (*domain.DailySelection, error) {
	var sel domain.DailySelection
	if err := row.Scan(&sel.Date, &sel.ProblemID, &sel.CreatedAt); err != nil {
		return nil, err
	}
	sel.Date = domain.CalendarDate(sel.Date, time.UTC)
	return &sel, nil
}
