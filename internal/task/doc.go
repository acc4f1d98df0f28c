// Package task runs background jobs on a fixed interval.
//
// A Scheduler owns one timer and one goroutine: the job fires once at
// startup and then on every tick, and a cycle never overlaps the previous
// one. There is no cross-process coordination, so every running instance
// performs its own cycles; jobs must therefore be idempotent.
package task
