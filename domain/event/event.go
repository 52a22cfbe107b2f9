// Package event defines the candidate-event domain types produced by the
// generation pipeline and consumed by puzzle composition.
package event

import (
	"fmt"
	"strings"

	"chronle/domain/core"
)

// Category classifies a historical event by topic.
type Category string

const (
	CategoryPolitics    Category = "politics"
	CategoryWar         Category = "war"
	CategoryScience     Category = "science"
	CategoryCulture     Category = "culture"
	CategoryTechnology  Category = "technology"
	CategoryReligion    Category = "religion"
	CategoryEconomy     Category = "economy"
	CategorySports      Category = "sports"
	CategoryExploration Category = "exploration"
	CategoryArts        Category = "arts"
)

// AllCategories lists every valid category, in a stable order.
var AllCategories = []Category{
	CategoryPolitics, CategoryWar, CategoryScience, CategoryCulture,
	CategoryTechnology, CategoryReligion, CategoryEconomy, CategorySports,
	CategoryExploration, CategoryArts,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// CandidateEvent is one generated historical clue. Text must describe the
// event in present tense without leaking the year; the deterministic
// safety net enforces that regardless of what the model claims.
type CandidateEvent struct {
	Text       string   `json:"text"`
	Title      string   `json:"title"`
	Category   Category `json:"category"`
	Difficulty int      `json:"difficulty"` // 1 = famous, 5 = obscure
	Region     string   `json:"region"`
}

// Validate checks the structural bounds of a candidate event. This is the
// schema-level gate; the textual safety-net checks live in internal/vet.
func (e CandidateEvent) Validate() error {
	if n := len(e.Text); n < 5 || n > 200 {
		return core.NewValidationError("text", fmt.Sprintf("length %d outside 5-200", n))
	}
	if n := len(e.Title); n < 3 || n > 100 {
		return core.NewValidationError("title", fmt.Sprintf("length %d outside 3-100", n))
	}
	if !e.Category.IsValid() {
		return core.NewValidationError("category", fmt.Sprintf("unknown category %q", e.Category))
	}
	if e.Difficulty < 1 || e.Difficulty > 5 {
		return core.NewValidationError("difficulty", fmt.Sprintf("%d outside 1-5", e.Difficulty))
	}
	if n := len(strings.TrimSpace(e.Region)); n < 2 || n > 50 {
		return core.NewValidationError("region", fmt.Sprintf("length %d outside 2-50", n))
	}
	return nil
}

// PoolEvent is a persisted candidate event in a year's pool.
type PoolEvent struct {
	ID        core.EventID   `json:"id" db:"id"`
	Year      int            `json:"year" db:"year"`
	Event     CandidateEvent `json:"event"`
	Used      bool           `json:"used" db:"used"`
	CreatedAt core.Timestamp `json:"created_at" db:"created_at"`
}

// OrderEvent is the ground truth for one slot of an order-mode puzzle.
// Year is signed; negative years are BCE. Immutable once published.
type OrderEvent struct {
	ID   core.EventID `json:"id"`
	Year int          `json:"year"`
	Text string       `json:"text"`
}

// YearStat is the per-year aggregate over the event pool. Derived, never
// stored; recomputed on demand by the coverage selector.
type YearStat struct {
	Year      int `json:"year" db:"year"`
	Total     int `json:"total" db:"total"`
	Used      int `json:"used" db:"used"`
	Available int `json:"available" db:"available"`
}
