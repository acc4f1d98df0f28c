package ebbinghaus

import (
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// DefaultIntervalsDays is the Ebbinghaus review table, indexed by stage (1-based).
var DefaultIntervalsDays = []int{1, 2, 4, 7, 15, 30}

// Params defines the configurable parameters of the review policy
type Params struct {
	// IntervalsDays holds the wait in days after reaching each stage
	IntervalsDays []int

	// MaxStage is the last schedulable stage; a correct review beyond it completes the plan.
	// It is always domain.MaxReviewStage, whatever the table length.
	MaxStage int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	IntervalsDays []int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	intervals := make([]int, len(DefaultIntervalsDays))
	copy(intervals, DefaultIntervalsDays)

	return &Params{
		IntervalsDays: intervals,
		MaxStage:      domain.MaxReviewStage,
	}
}

// NewParams creates a new Params instance with custom configuration.
// An empty or non-positive table falls back to the defaults. A shorter table
// clamps to its last entry and entries past the sixth stage are never used.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.IntervalsDays) == 0 {
		return params
	}
	for _, days := range config.IntervalsDays {
		if days <= 0 {
			return params
		}
	}

	params.IntervalsDays = make([]int, len(config.IntervalsDays))
	copy(params.IntervalsDays, config.IntervalsDays)
	return params
}

// IntervalForStage returns the wait after reaching stage. Stages beyond the
// table clamp to the last entry and stages below 1 to the first.
func (p *Params) IntervalForStage(stage int) time.Duration {
	idx := stage - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.IntervalsDays) {
		idx = len(p.IntervalsDays) - 1
	}
	return time.Duration(p.IntervalsDays[idx]) * 24 * time.Hour
}
