package store

import (
	"context"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// InsertResult is the outcome of an insert guarded by a natural key.
// Exactly one of the two cases holds:
//   - Inserted: Selection is the row this call wrote
//   - !Inserted: another writer got there first and Selection is its row
type InsertResult struct {
	Selection *domain.DailySelection
	Inserted  bool
}

// DailySelectionStore persists the problem chosen for each calendar date.
// The date is the primary key; the store never updates an existing row.
// Version: 1.0
type DailySelectionStore interface {
	// GetByDate retrieves the selection for a calendar date.
	// Returns ErrDailySelectionNotFound if none has been made yet.
	GetByDate(ctx context.Context, date time.Time) (*domain.DailySelection, error)

	// InsertIfAbsent attempts to persist the selection. When a row for the date
	// already exists it is returned instead, with Inserted=false; a uniqueness
	// conflict is therefore never reported as an error.
	InsertIfAbsent(ctx context.Context, selection *domain.DailySelection) (InsertResult, error)
}
