package quality

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"chronle/domain/event"
	"chronle/domain/puzzle"
)

// ComputeComposition scores a candidate set on the judge's 0-1 quality
// axes using deterministic proxies. The LLM judge produces its own version
// of these scores; the curator records this one for every published set so
// the model's self-assessment is never the only signal on file.
func ComputeComposition(events []event.CandidateEvent) puzzle.CompositionScores {
	if len(events) == 0 {
		return puzzle.CompositionScores{}
	}

	return puzzle.CompositionScores{
		TopicDiversity:     topicEntropy(events),
		GeographicSpread:   regionSpread(events),
		DifficultyGradient: difficultyGradient(events),
		Guessability:       guessability(events),
	}
}

// topicEntropy is the Shannon entropy of the category distribution,
// normalized by the maximum achievable for the set size.
func topicEntropy(events []event.CandidateEvent) float64 {
	counts := make(map[event.Category]float64)
	for _, e := range events {
		counts[e.Category]++
	}
	if len(counts) <= 1 {
		return 0
	}

	dist := make([]float64, 0, len(counts))
	total := float64(len(events))
	for _, c := range counts {
		dist = append(dist, c/total)
	}

	maxCats := len(events)
	if maxCats > len(event.AllCategories) {
		maxCats = len(event.AllCategories)
	}
	return stat.Entropy(dist) / math.Log(float64(maxCats))
}

// regionSpread is the fraction of events with a distinct region label.
func regionSpread(events []event.CandidateEvent) float64 {
	seen := make(map[string]struct{})
	for _, e := range events {
		seen[normalizeRegion(e.Region)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(events))
}

func normalizeRegion(region string) string {
	return significantKey(region)
}

func significantKey(s string) string {
	var b []rune
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b = append(b, r)
		}
	}
	return string(b)
}

// difficultyGradient rewards sets whose difficulties climb smoothly from
// easy to hard: Spearman-style correlation between position in the
// difficulty-sorted set and difficulty value, folded into 0-1.
func difficultyGradient(events []event.CandidateEvent) float64 {
	if len(events) < 2 {
		return 0
	}

	positions := make([]float64, len(events))
	difficulties := make([]float64, len(events))
	for i, e := range events {
		positions[i] = float64(i)
		difficulties[i] = float64(e.Difficulty)
	}

	// Constant difficulty has no gradient at all.
	allSame := true
	for _, d := range difficulties[1:] {
		if d != difficulties[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return 0
	}

	corr := stat.Correlation(positions, difficulties, nil)
	if math.IsNaN(corr) {
		return 0
	}
	return (corr + 1) / 2
}

// guessability maps mean difficulty onto 0-1 where 1 means famous/easy.
func guessability(events []event.CandidateEvent) float64 {
	sum := 0.0
	for _, e := range events {
		sum += float64(e.Difficulty)
	}
	mean := sum / float64(len(events))
	// Difficulty runs 1..5; invert onto 0..1.
	return (5 - mean) / 4
}
