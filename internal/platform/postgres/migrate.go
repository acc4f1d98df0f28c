package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Auroral0810/LaTexia-sub000/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// MigrationTable records applied schema versions.
const MigrationTable = "schema_migrations"

// Supported Migrate commands.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateReset   = "reset"
	MigrateStatus  = "status"
	MigrateVersion = "version"
)

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. Goose only calls it from its CLI helpers,
// so it logs instead of exiting.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate runs a goose command against db using the embedded migrations.
// Goose keeps its configuration in package state, so concurrent calls are not
// supported.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command))

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetTableName(MigrationTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, db, ".")
	case MigrateReset:
		err = goose.ResetContext(ctx, db, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, ".")
	case MigrateVersion:
		err = goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	logger.Info("migration finished")
	return nil
}
