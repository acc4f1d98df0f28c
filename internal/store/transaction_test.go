package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRunInTransaction_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO practice_attempts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO practice_attempts DEFAULT VALUES")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("work failed")
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		return want
	})

	assert.Same(t, want, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_BeginFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_CommitFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_RollbackFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("conn closed"))

	want := errors.New("work failed")
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		return want
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, want)
	assert.Contains(t, err.Error(), "rollback failed")
}

func TestRunInTransaction_RepanicsAfterRollback(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
