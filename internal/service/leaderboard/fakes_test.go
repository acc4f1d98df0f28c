package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

type snapshotKey struct {
	user      uuid.UUID
	typ, pkey string
}

// memoryBoard is an in-memory store.LeaderboardStore. Aggregate follows the
// SQL semantics over attempts, and UpsertSnapshots keeps updated_at when no
// value changed.
type memoryBoard struct {
	mu        sync.Mutex
	scores    map[uuid.UUID]int
	attempts  []domain.PracticeAttempt
	snapshots map[snapshotKey]domain.LeaderboardSnapshot

	// failSince makes Aggregate fail for windows starting at or after it.
	failSince *time.Time
	failAll   bool
	queries   int
}

func newMemoryBoard() *memoryBoard {
	return &memoryBoard{
		scores:    make(map[uuid.UUID]int),
		snapshots: make(map[snapshotKey]domain.LeaderboardSnapshot),
	}
}

func (m *memoryBoard) addAttempt(user, problem uuid.UUID, correct bool, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, domain.PracticeAttempt{
		ID: uuid.New(), UserID: user, ProblemID: problem, IsCorrect: correct,
		Source: domain.AttemptSourcePractice, CreatedAt: at,
	})
}

var errAggregate = errors.New("aggregate query failed")

func (m *memoryBoard) Aggregate(_ context.Context, since *time.Time) ([]store.UserAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || (m.failSince != nil && since != nil && !since.Before(*m.failSince)) {
		return nil, errAggregate
	}

	byUser := map[uuid.UUID]*store.UserAggregate{}
	for _, a := range m.attempts {
		if since != nil && a.CreatedAt.Before(*since) {
			continue
		}
		agg, ok := byUser[a.UserID]
		if !ok {
			agg = &store.UserAggregate{UserID: a.UserID}
			byUser[a.UserID] = agg
		}
		agg.AttemptCount++
		if a.IsCorrect {
			agg.CorrectCount++
			agg.Score += m.scores[a.ProblemID]
			at := a.CreatedAt
			if agg.LastCorrectAt == nil || at.After(*agg.LastCorrectAt) {
				agg.LastCorrectAt = &at
			}
		}
	}

	out := make([]store.UserAggregate, 0, len(byUser))
	for _, agg := range byUser {
		out = append(out, *agg)
	}
	return out, nil
}

func (m *memoryBoard) UpsertSnapshots(_ context.Context, snaps []domain.LeaderboardSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snaps {
		key := snapshotKey{s.UserID, s.PeriodType, s.PeriodKey}
		if old, ok := m.snapshots[key]; ok {
			s2 := s
			s2.UpdatedAt = old.UpdatedAt
			if s2 == old {
				continue
			}
		}
		m.snapshots[key] = s
	}
	return nil
}

func (m *memoryBoard) Query(_ context.Context, typ, key string, limit int) ([]domain.RankedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	var entries []domain.RankedEntry
	for k, s := range m.snapshots {
		if k.typ == typ && k.pkey == key {
			entries = append(entries, domain.RankedEntry{
				Rank: s.Rank, User: domain.UserProfile{ID: s.UserID}, Score: s.Score,
				CorrectCount: s.CorrectCount, AttemptCount: s.AttemptCount,
				AccuracyRate: s.AccuracyRate, UpdatedAt: s.UpdatedAt,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memoryBoard) WithTx(*sql.Tx) store.LeaderboardStore { return m }

// rows returns the snapshots of a period ordered by rank.
func (m *memoryBoard) rows(p period.Period) []domain.LeaderboardSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LeaderboardSnapshot
	for k, s := range m.snapshots {
		if k.typ == string(p.Type) && k.pkey == p.Key {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// recordingCache is a map-backed Cache that records invalidations.
type recordingCache struct {
	mu          sync.Mutex
	entries     map[string][]domain.RankedEntry
	invalidated []period.Period
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]domain.RankedEntry{}}
}

func cacheKey(p period.Period, limit int) string {
	return fmt.Sprintf("%s:%d", p, limit)
}

func (c *recordingCache) Get(_ context.Context, p period.Period, limit int) ([]domain.RankedEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey(p, limit)]
	return e, ok, nil
}

func (c *recordingCache) Set(_ context.Context, p period.Period, limit int, e []domain.RankedEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(p, limit)] = e
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, p period.Period) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, p)
	for k := range c.entries {
		if strings.HasPrefix(k, p.String()+":") {
			delete(c.entries, k)
		}
	}
	return nil
}
