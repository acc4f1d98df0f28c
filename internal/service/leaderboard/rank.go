package leaderboard

import (
	"bytes"
	"math"
	"sort"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

// AccuracyRate returns correct/attempts as a percentage rounded to two
// decimals, or 0 when there are no attempts.
func AccuracyRate(correct, attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return math.Round(float64(correct)*10000/float64(attempts)) / 100
}

// Rank orders aggregates and turns them into the snapshots of p.
//
// Order: score descending, then the earlier last correct attempt (the user
// who reached the score first), users without a correct attempt after those
// with one, then user ID ascending. Ranks are the 1-based positions, so they
// form a dense sequence with no ties.
func Rank(p period.Period, rows []store.UserAggregate, now time.Time) []domain.LeaderboardSnapshot {
	sorted := make([]store.UserAggregate, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ranksBefore(&sorted[i], &sorted[j])
	})

	snapshots := make([]domain.LeaderboardSnapshot, len(sorted))
	for i, row := range sorted {
		snapshots[i] = domain.LeaderboardSnapshot{
			UserID:       row.UserID,
			PeriodType:   string(p.Type),
			PeriodKey:    p.Key,
			Score:        row.Score,
			CorrectCount: row.CorrectCount,
			AttemptCount: row.AttemptCount,
			AccuracyRate: AccuracyRate(row.CorrectCount, row.AttemptCount),
			Rank:         i + 1,
			UpdatedAt:    now,
		}
	}
	return snapshots
}

func ranksBefore(a, b *store.UserAggregate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	switch {
	case a.LastCorrectAt != nil && b.LastCorrectAt == nil:
		return true
	case a.LastCorrectAt == nil && b.LastCorrectAt != nil:
		return false
	case a.LastCorrectAt != nil && !a.LastCorrectAt.Equal(*b.LastCorrectAt):
		return a.LastCorrectAt.Before(*b.LastCorrectAt)
	}
	return bytes.Compare(a.UserID[:], b.UserID[:]) < 0
}
