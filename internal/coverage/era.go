// Package coverage analyzes the generated-event pool for gaps across the
// supported year range and proposes balanced batches of target years for
// the next generation run.
package coverage

// Era buckets the supported year range into three spans used to keep
// content balanced across history.
type Era string

const (
	EraAncient  Era = "ancient"  // year <= 500
	EraMedieval Era = "medieval" // 501..1499
	EraModern   Era = "modern"   // year >= 1500
)

// Supported year range, inclusive. Negative years are BCE.
const (
	MinYear = -776
	MaxYear = 2008
)

// GetEraBucket maps a year onto its era. The 500/501 and 1499/1500
// transitions are exact.
func GetEraBucket(year int) Era {
	switch {
	case year <= 500:
		return EraAncient
	case year <= 1499:
		return EraMedieval
	default:
		return EraModern
	}
}

// eraSpan returns the inclusive year bounds of an era within the supported
// range.
func eraSpan(era Era) (int, int) {
	switch era {
	case EraAncient:
		return MinYear, 500
	case EraMedieval:
		return 501, 1499
	default:
		return 1500, MaxYear
	}
}
