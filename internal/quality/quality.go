// Package quality holds the pure puzzle-curation functions: redundancy
// detection, topic diversity, and diverse-hint selection over a pool of
// candidate events. No I/O; everything operates on in-memory slices.
package quality

import (
	"sort"
	"strings"

	"chronle/domain/core"
	"chronle/domain/event"
)

// redundancyThreshold is the word-overlap ratio above which two hints are
// considered to describe the same thing.
const redundancyThreshold = 0.6

// significantWordLen: words this short ("the", "of", "in") carry no signal
// for overlap comparison.
const significantWordLen = 3

// significantWords normalizes a hint and returns its set of words longer
// than three characters.
func significantWords(hint string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(hint) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(b.String()) {
		if len(w) > significantWordLen {
			words[w] = struct{}{}
		}
	}
	return words
}

// HasObviousRedundancy reports whether any pair of hints shares more than
// 60% of its significant words, measured against the smaller word set.
// O(n^2 * w), fine for single-digit hint counts.
func HasObviousRedundancy(hints []string) bool {
	sets := make([]map[string]struct{}, len(hints))
	for i, h := range hints {
		sets[i] = significantWords(h)
	}

	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			a, b := sets[i], sets[j]
			if len(a) == 0 || len(b) == 0 {
				continue
			}
			overlap := 0
			for w := range a {
				if _, ok := b[w]; ok {
					overlap++
				}
			}
			smaller := len(a)
			if len(b) < smaller {
				smaller = len(b)
			}
			if float64(overlap)/float64(smaller) > redundancyThreshold {
				return true
			}
		}
	}
	return false
}

// HasTopicDiversity reports whether the events span at least minCategories
// distinct categories.
func HasTopicDiversity(events []event.CandidateEvent, minCategories int) bool {
	seen := make(map[event.Category]struct{})
	for _, e := range events {
		seen[e.Category] = struct{}{}
	}
	return len(seen) >= minCategories
}

// SelectDiverseHints picks count hint texts from the candidates, easy
// events first, taking one per distinct category before filling remaining
// slots from the difficulty-sorted remainder. Errors when fewer candidates
// than count are supplied.
func SelectDiverseHints(events []event.CandidateEvent, count int) ([]string, error) {
	if len(events) < count {
		return nil, core.ErrNotEnoughCandidates
	}

	byDifficulty := make([]event.CandidateEvent, len(events))
	copy(byDifficulty, events)
	sort.SliceStable(byDifficulty, func(i, j int) bool {
		return byDifficulty[i].Difficulty < byDifficulty[j].Difficulty
	})

	selected := make([]string, 0, count)
	taken := make(map[int]struct{}, count)

	// One event per category first, preserving difficulty order.
	usedCategories := make(map[event.Category]struct{})
	for i, e := range byDifficulty {
		if len(selected) >= count {
			break
		}
		if _, ok := usedCategories[e.Category]; ok {
			continue
		}
		usedCategories[e.Category] = struct{}{}
		taken[i] = struct{}{}
		selected = append(selected, e.Text)
	}

	// Fill remaining slots from what's left, still easiest first.
	for i, e := range byDifficulty {
		if len(selected) >= count {
			break
		}
		if _, ok := taken[i]; ok {
			continue
		}
		taken[i] = struct{}{}
		selected = append(selected, e.Text)
	}

	return selected, nil
}
