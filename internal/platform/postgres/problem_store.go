package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

const problemColumns = `id, title, difficulty, score, is_published, created_at`

// PostgresProblemStore implements store.ProblemStore on the problems table.
type PostgresProblemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProblemStore creates a problem store. It panics if db is nil.
func NewPostgresProblemStore(db store.DBTX, logger *slog.Logger) *PostgresProblemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProblemStore{
		db:     db,
		logger: logger.With(slog.String("component", "problem_store")),
	}
}

var _ store.ProblemStore = (*PostgresProblemStore)(nil)

// RandomPublished implements store.ProblemStore.RandomPublished.
func (s *PostgresProblemStore) RandomPublished(ctx context.Context) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + problemColumns + `
		FROM problems
		WHERE is_published = TRUE
		ORDER BY random()
		LIMIT 1`

	problem, err := scanProblem(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no published problems available")
		return nil, store.ErrProblemNotFound
	}
	if err != nil {
		log.Error("failed to pick random problem", slog.String("error", err.Error()))
		return nil, storeErr("problem", "random_published", err)
	}
	return problem, nil
}

// GetByID implements store.ProblemStore.GetByID.
func (s *PostgresProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`

	problem, err := scanProblem(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProblemNotFound
	}
	if err != nil {
		log.Error("failed to get problem",
			slog.String("problem_id", id.String()),
			slog.String("error", err.Error()))
		return nil, storeErr("problem", "get", err)
	}
	return problem, nil
}

func scanProblem(row *sql.Row) (*domain.Problem, error) {
	var p domain.Problem
	var difficulty string
	if err := row.Scan(&p.ID, &p.Title, &difficulty, &p.Score, &p.IsPublished, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Difficulty = domain.Difficulty(difficulty)
	return &p, nil
}
