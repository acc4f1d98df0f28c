package leaderboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
)

// PeriodFailure is one window that could not be refreshed.
type PeriodFailure struct {
	Period period.Period
	Err    error
}

// PartialAggregationError reports the windows that failed during a refresh.
// The remaining windows were refreshed normally.
type PartialAggregationError struct {
	Failures []PeriodFailure
}

func (e *PartialAggregationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Period, f.Err)
	}
	return fmt.Sprintf("leaderboard refresh failed for %d period(s): %s",
		len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes each failure's cause to errors.Is and errors.As.
func (e *PartialAggregationError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// FailedPeriods lists the periods that failed.
func (e *PartialAggregationError) FailedPeriods() []period.Period {
	out := make([]period.Period, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Period
	}
	return out
}

// IsPartialAggregation reports whether err carries a PartialAggregationError.
func IsPartialAggregation(err error) bool {
	var partial *PartialAggregationError
	return errors.As(err, &partial)
}
