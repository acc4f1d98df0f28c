//go:build integration

// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests run only when DATABASE_URL is set and are otherwise skipped. The
// schema is migrated once per process with the embedded goose migrations,
// and each test runs inside a transaction that is rolled back on cleanup so
// tests can run in parallel without seeing each other's rows.
//
//	func TestReviewStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        plans := postgres.NewPostgresReviewPlanStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
