package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// PostgreSQL SQLSTATE codes the stores translate.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	serializationFailure    = "40001"
)

// MapError translates driver errors into store sentinels, keeping the original
// error in the chain. Unknown errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: foreign key violation (%s): %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s): %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s): %w", store.ErrInvalidEntity, pgErr.ColumnName, err)
	case serializationFailure:
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}
	return err
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// rowsAffected returns the row count of an Exec result.
func rowsAffected(result sql.Result) (int64, error) {
	if result == nil {
		return 0, errors.New("nil result")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// storeErr wraps a mapped driver error with the entity and operation that failed.
func storeErr(entity, operation string, err error) error {
	return store.NewStoreError(entity, operation, "database operation failed", MapError(err))
}
