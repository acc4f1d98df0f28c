package domain

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty is the editorial difficulty of a problem.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Problem is a catalog entry. Only the fields the progression engine reads are
// modelled; content editing lives elsewhere.
type Problem struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Difficulty  Difficulty `json:"difficulty"`
	Score       int        `json:"score"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProblemSummary is the display projection returned by the daily challenge
// and review endpoints.
type ProblemSummary struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Score      int        `json:"score"`
}

// Summary projects a Problem onto its display fields.
func (p *Problem) Summary() *ProblemSummary {
	return &ProblemSummary{
		ID:         p.ID,
		Title:      p.Title,
		Difficulty: p.Difficulty,
		Score:      p.Score,
	}
}
