package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk_user"}, store.ErrInvalidEntity},
		{"check violation", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null violation", &pgconn.PgError{Code: notNullViolationCode}, store.ErrInvalidEntity},
		{"serialization failure", &pgconn.PgError{Code: serializationFailure}, store.ErrTransactionFailed},
		{"wrapped unique violation", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "original error must stay in the chain")
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unmapped passes through", func(t *testing.T) {
		assert.Same(t, plain, MapError(plain))

		pgErr := &pgconn.PgError{Code: "XX000"}
		assert.Same(t, error(pgErr), MapError(pgErr))
	})
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsForeignKeyViolation(errors.New("other")))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: foreignKeyViolationCode})))
	assert.False(t, IsForeignKeyViolation(nil))
}
