//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/platform/postgres"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds setup operations against the test database.
const TestTimeout = 10 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDatabaseURL returns DATABASE_URL, falling back to
// PRACTICE_TEST_DATABASE_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("PRACTICE_TEST_DATABASE_URL")
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// GetTestDBWithT opens a migrated test database and closes it on cleanup.
// The test is skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", GetTestDatabaseURL())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, postgres.MigrateUp, nil)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")
	t.Cleanup(func() { _ = tx.Rollback() })

	fn(t, tx)
}
