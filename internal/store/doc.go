// Package store defines interfaces for data persistence operations of the
// practice progression engine: the problem catalog, the append-only attempt
// log, daily selections, review plans and leaderboard snapshots. Business
// rules depend on these interfaces only, never on a specific database.
package store
