// Package puzzle defines the playable puzzle record and the optional
// LLM-judge quality gate types.
package puzzle

import (
	"chronle/domain/core"
	"chronle/domain/event"
)

// Puzzle is one published order-mode puzzle: six events the player must
// arrange chronologically. Events are immutable once published.
type Puzzle struct {
	ID        core.PuzzleID      `json:"id" db:"id"`
	Day       string             `json:"day" db:"day"` // YYYY-MM-DD publication slot
	Events    []event.OrderEvent `json:"events"`
	CreatedAt core.Timestamp     `json:"created_at" db:"created_at"`
}

// PositionFeedback is the per-slot verdict for a submitted ordering.
type PositionFeedback string

const (
	FeedbackCorrect   PositionFeedback = "correct"
	FeedbackIncorrect PositionFeedback = "incorrect"
)

// AttemptValidation is the server-recomputed result of evaluating one
// submitted ordering against ground truth. Never derived from anything the
// client claims.
type AttemptValidation struct {
	Feedback     []PositionFeedback `json:"feedback"`
	PairsCorrect int                `json:"pairs_correct"`
	TotalPairs   int                `json:"total_pairs"`
}

// OrderAttempt is a persisted play of one puzzle by one user.
type OrderAttempt struct {
	ID        core.AttemptID    `json:"id" db:"id"`
	UserID    core.UserID       `json:"user_id" db:"user_id"`
	PuzzleID  core.PuzzleID     `json:"puzzle_id" db:"puzzle_id"`
	Ordering  []core.EventID    `json:"ordering"`
	Result    AttemptValidation `json:"result"`
	Solved    bool              `json:"solved" db:"solved"`
	CreatedAt core.Timestamp    `json:"created_at" db:"created_at"`
}

// CompositionScores are the judge's 0-1 quality axes for a candidate set.
type CompositionScores struct {
	TopicDiversity     float64 `json:"topic_diversity"`
	GeographicSpread   float64 `json:"geographic_spread"`
	DifficultyGradient float64 `json:"difficulty_gradient"`
	Guessability       float64 `json:"guessability"`
}

// OrderingRecommendation is the judge's pick of exactly six events.
type OrderingRecommendation struct {
	EventIDs  []string `json:"event_ids"`
	Rationale string   `json:"rationale"`
}

// Judgment is the result of an LLM-judge pass over a candidate batch.
// Advisory only: approval never bypasses the deterministic safety net.
type Judgment struct {
	Approved     bool                   `json:"approved"`
	QualityScore float64                `json:"quality_score"`
	Ordering     OrderingRecommendation `json:"ordering"`
	Composition  CompositionScores      `json:"composition"`
	Issues       []string               `json:"issues"`
	Suggestions  []string               `json:"suggestions"`
}
