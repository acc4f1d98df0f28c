package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/postgres/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_UnknownCommand(t *testing.T) {
	log, _ := logger.NewTestLogger()
	err := Migrate(context.Background(), nil, "sideways", log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Len(t, files, 5)

	for _, name := range files {
		body, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestEmbeddedMigrations_AttemptLogIsNeverCascaded(t *testing.T) {
	body, err := fs.ReadFile(migrations.FS, "20260301000002_create_practice_attempts.sql")
	require.NoError(t, err)

	up, _, found := strings.Cut(string(body), "-- +goose Down")
	require.True(t, found)
	assert.NotContains(t, up, "CASCADE")
	assert.Contains(t, up, "REFERENCES users(id) ON DELETE RESTRICT")
	assert.Contains(t, up, "REFERENCES problems(id) ON DELETE RESTRICT")
}
