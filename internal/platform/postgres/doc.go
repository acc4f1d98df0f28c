// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx stdlib driver. Every store accepts a
// store.DBTX so it can run against a pool or inside a transaction, and maps
// driver errors to store sentinels with MapError.
package postgres
