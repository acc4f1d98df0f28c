package ebbinghaus

import (
	"errors"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// Common errors
var (
	ErrNilPlan = errors.New("review plan cannot be nil")
)

// Service defines the interface for review policy operations.
// Implementations are pure: they never mutate the plan passed in.
type Service interface {
	// Enroll returns the plan reset to stage 1, due one interval from now
	Enroll(plan *domain.ReviewPlan, now time.Time) (*domain.ReviewPlan, error)

	// Advance computes the plan after a review answered correct or not
	Advance(plan *domain.ReviewPlan, correct bool, now time.Time) (*domain.ReviewPlan, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new review policy with the default interval table
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new review policy with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Enroll implements Service.Enroll
func (s *defaultService) Enroll(plan *domain.ReviewPlan, now time.Time) (*domain.ReviewPlan, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}
	return enrolledPlan(plan, now, s.params), nil
}

// Advance implements Service.Advance
func (s *defaultService) Advance(
	plan *domain.ReviewPlan,
	correct bool,
	now time.Time,
) (*domain.ReviewPlan, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}
	if plan.IsCompleted {
		return nil, domain.ErrPlanCompleted
	}
	return advancedPlan(plan, correct, now, s.params), nil
}
