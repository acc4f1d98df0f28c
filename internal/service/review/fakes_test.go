package review

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/store"
)

type planKey struct{ user, problem uuid.UUID }

// memoryPlans is an in-memory store.ReviewPlanStore with real CAS semantics.
// beforeSwap, when set, runs inside CompareAndSwap before the comparison so
// tests can interleave a competing writer.
type memoryPlans struct {
	mu         sync.Mutex
	plans      map[planKey]domain.ReviewPlan
	beforeSwap func(call int)
	swapCalls  int
}

func newMemoryPlans() *memoryPlans {
	return &memoryPlans{plans: make(map[planKey]domain.ReviewPlan)}
}

func (m *memoryPlans) put(p domain.ReviewPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[planKey{p.UserID, p.ProblemID}] = p
}

func (m *memoryPlans) Get(_ context.Context, userID, problemID uuid.UUID) (*domain.ReviewPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planKey{userID, problemID}]
	if !ok {
		return nil, store.ErrReviewPlanNotFound
	}
	return &p, nil
}

func (m *memoryPlans) Upsert(_ context.Context, plan *domain.ReviewPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	m.put(*plan)
	return nil
}

func (m *memoryPlans) CompareAndSwap(_ context.Context, plan *domain.ReviewPlan, expectedStage int) (bool, error) {
	m.mu.Lock()
	m.swapCalls++
	call := m.swapCalls
	hook := m.beforeSwap
	m.mu.Unlock()
	if hook != nil {
		hook(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := planKey{plan.UserID, plan.ProblemID}
	cur, ok := m.plans[key]
	if !ok || cur.Stage != expectedStage || cur.IsCompleted {
		return false, nil
	}
	m.plans[key] = *plan
	return true, nil
}

func (m *memoryPlans) ListDue(_ context.Context, userID uuid.UUID, now time.Time) ([]domain.DueReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	due := []domain.DueReview{}
	for _, p := range m.plans {
		if p.UserID == userID && p.IsDue(now) {
			due = append(due, domain.DueReview{Plan: p, Problem: domain.ProblemSummary{ID: p.ProblemID}})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Plan.NextReviewAt.Before(due[j].Plan.NextReviewAt) })
	return due, nil
}

func (m *memoryPlans) Stats(_ context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.ReviewStats{ByStage: map[int]int{}}
	for _, p := range m.plans {
		if p.UserID != userID {
			continue
		}
		stats.Total++
		if p.IsDue(now) {
			stats.DueNow++
		}
		if p.IsCompleted {
			stats.Completed++
			continue
		}
		stats.Active++
		stats.ByStage[p.Stage]++
	}
	return stats, nil
}

func (m *memoryPlans) WithTx(*sql.Tx) store.ReviewPlanStore { return m }

type memoryAttempts struct {
	mu       sync.Mutex
	attempts []domain.PracticeAttempt
}

func (m *memoryAttempts) Append(_ context.Context, a *domain.PracticeAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *memoryAttempts) WithTx(*sql.Tx) store.AttemptStore { return m }

func (m *memoryAttempts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}
