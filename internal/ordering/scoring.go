// Package ordering implements the server-authoritative scoring engine for
// order-mode puzzles. Everything here is pure computation over ground-truth
// event years; client-supplied orderings are treated as untrusted input and
// are scored, never trusted or reflected back.
package ordering

import (
	"sort"

	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/domain/puzzle"
)

// GetCorrectOrder returns event ids sorted ascending by year, breaking
// exact year ties by ascending id. The input slice is not mutated.
func GetCorrectOrder(events []event.OrderEvent) []core.EventID {
	sorted := make([]event.OrderEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].ID < sorted[j].ID
	})

	order := make([]core.EventID, len(sorted))
	for i, e := range sorted {
		order[i] = e.ID
	}
	return order
}

// WouldSolve reports whether ordering matches the correct order exactly.
func WouldSolve(ordering []core.EventID, events []event.OrderEvent) bool {
	correct := GetCorrectOrder(events)
	if len(ordering) != len(correct) {
		return false
	}
	for i := range correct {
		if ordering[i] != correct[i] {
			return false
		}
	}
	return true
}

// EvaluateOrdering recomputes the correct order from ground truth and
// scores the submitted ordering: per-position feedback plus pairwise
// relative-order correctness out of C(n,2). Unknown or repeated ids simply
// fail to match and score as incorrect.
func EvaluateOrdering(ordering []core.EventID, events []event.OrderEvent) puzzle.AttemptValidation {
	correct := GetCorrectOrder(events)

	// Position of each id in the correct order.
	position := make(map[core.EventID]int, len(correct))
	for i, id := range correct {
		position[id] = i
	}

	n := len(ordering)
	feedback := make([]puzzle.PositionFeedback, n)
	for i := 0; i < n; i++ {
		if i < len(correct) && ordering[i] == correct[i] {
			feedback[i] = puzzle.FeedbackCorrect
		} else {
			feedback[i] = puzzle.FeedbackIncorrect
		}
	}

	pairsCorrect := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pi, iOK := position[ordering[i]]
			pj, jOK := position[ordering[j]]
			if iOK && jOK && pi < pj {
				pairsCorrect++
			}
		}
	}

	return puzzle.AttemptValidation{
		Feedback:     feedback,
		PairsCorrect: pairsCorrect,
		TotalPairs:   n * (n - 1) / 2,
	}
}

// IsSolved reports whether every feedback entry is correct. An empty
// feedback list is vacuously solved; callers must keep zero-event puzzles
// away from submission.
func IsSolved(result puzzle.AttemptValidation) bool {
	for _, f := range result.Feedback {
		if f != puzzle.FeedbackCorrect {
			return false
		}
	}
	return true
}
