package coverage

import (
	"sort"
)

// CandidateSource explains why a year was proposed for generation work.
// Sources carry a descending priority: missing > low_quality > fallback.
type CandidateSource string

const (
	SourceMissing    CandidateSource = "missing"
	SourceLowQuality CandidateSource = "low_quality"
	SourceFallback   CandidateSource = "fallback"
)

func sourcePriority(s CandidateSource) int {
	switch s {
	case SourceMissing:
		return 0
	case SourceLowQuality:
		return 1
	default:
		return 2
	}
}

// Candidate is one proposed target year for the next generation run.
// Severity ranks candidates within a source tier; higher is more urgent.
type Candidate struct {
	Year     int             `json:"year"`
	Severity float64         `json:"severity"`
	Source   CandidateSource `json:"source"`
}

// PickBalancedYears selects up to count unique target years, guaranteeing
// one pick per era bucket whenever every bucket has a candidate and
// count >= 3, then filling remaining slots by (source priority, severity).
func PickBalancedYears(candidates []Candidate, count int) []int {
	if count <= 0 || len(candidates) == 0 {
		return nil
	}

	// Deduplicate by year, first occurrence wins.
	seen := make(map[int]struct{}, len(candidates))
	deduped := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Year]; ok {
			continue
		}
		seen[c.Year] = struct{}{}
		deduped = append(deduped, c)
	}

	picked := make([]int, 0, count)
	chosen := make(map[int]struct{}, count)

	// One pick per era first, most severe candidate within each bucket.
	for _, era := range []Era{EraAncient, EraMedieval, EraModern} {
		if len(picked) >= count {
			break
		}
		best := -1
		for i, c := range deduped {
			if GetEraBucket(c.Year) != era {
				continue
			}
			if _, taken := chosen[c.Year]; taken {
				continue
			}
			if best == -1 || c.Severity > deduped[best].Severity {
				best = i
			}
		}
		if best >= 0 {
			picked = append(picked, deduped[best].Year)
			chosen[deduped[best].Year] = struct{}{}
		}
	}

	// Fill remaining slots by source priority, then severity.
	remaining := make([]Candidate, 0, len(deduped))
	for _, c := range deduped {
		if _, taken := chosen[c.Year]; taken {
			continue
		}
		remaining = append(remaining, c)
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		pi, pj := sourcePriority(remaining[i].Source), sourcePriority(remaining[j].Source)
		if pi != pj {
			return pi < pj
		}
		return remaining[i].Severity > remaining[j].Severity
	})
	for _, c := range remaining {
		if len(picked) >= count {
			break
		}
		picked = append(picked, c.Year)
		chosen[c.Year] = struct{}{}
	}

	return picked
}
