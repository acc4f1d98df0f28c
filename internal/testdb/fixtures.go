//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// InsertUser creates a user row and returns its ID.
func InsertUser(t *testing.T, db store.DBTX, username string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO users (id, username, display_name) VALUES ($1, $2, $3)`,
		id, fmt.Sprintf("%s-%s", username, id.String()[:8]), username)
	require.NoError(t, err, "failed to insert user")
	return id
}

// InsertProblem creates a catalog row and returns it.
func InsertProblem(t *testing.T, db store.DBTX, title string, score int, published bool) *domain.Problem {
	t.Helper()

	p := &domain.Problem{
		ID:          uuid.New(),
		Title:       title,
		Difficulty:  domain.DifficultyMedium,
		Score:       score,
		IsPublished: published,
	}
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO problems (id, title, difficulty, score, is_published)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		p.ID, p.Title, string(p.Difficulty), p.Score, p.IsPublished).Scan(&p.CreatedAt)
	require.NoError(t, err, "failed to insert problem")
	return p
}

// UnpublishAll hides every existing problem inside tx so catalog tests start
// from a known published set.
func UnpublishAll(t *testing.T, tx *sql.Tx) {
	t.Helper()

	_, err := tx.ExecContext(context.Background(), `UPDATE problems SET is_published = FALSE`)
	require.NoError(t, err)
}
