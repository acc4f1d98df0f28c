package leaderboard

import (
	"context"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
)

// Cache fronts Query. Implementations must treat every error as a miss on
// the read path; the aggregator only logs them.
type Cache interface {
	Get(ctx context.Context, p period.Period, limit int) ([]domain.RankedEntry, bool, error)
	Set(ctx context.Context, p period.Period, limit int, entries []domain.RankedEntry) error
	Invalidate(ctx context.Context, p period.Period) error
}

// NoopCache never hits. It is used when no cache is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, period.Period, int) ([]domain.RankedEntry, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, period.Period, int, []domain.RankedEntry) error { return nil }

func (NoopCache) Invalidate(context.Context, period.Period) error { return nil }
