package task

import "context"

// Job is one unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job.
func (j JobFunc) Name() string { return j.JobName }

// Run implements Job.
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }
