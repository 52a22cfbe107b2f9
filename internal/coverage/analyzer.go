package coverage

import (
	"github.com/montanaflynn/stats"

	"chronle/domain/event"
)

// MinEventsPerYear is the threshold below which a year counts as
// insufficiently covered.
const MinEventsPerYear = 6

// Gaps describes where the event pool is thin. Transient, recomputed per
// invocation from the per-year stats.
type Gaps struct {
	MissingYears      []int           `json:"missing_years"`
	InsufficientYears []int           `json:"insufficient_years"`
	CoverageByEra     map[Era]float64 `json:"coverage_by_era"`
}

// AnalyzeCoverage computes coverage gaps across the full supported range
// from per-year pool stats. Years absent from stats count as missing.
func AnalyzeCoverage(yearStats []event.YearStat) Gaps {
	totals := make(map[int]int, len(yearStats))
	for _, s := range yearStats {
		totals[s.Year] = s.Total
	}

	gaps := Gaps{
		CoverageByEra: make(map[Era]float64, 3),
	}

	coveredByEra := make(map[Era]int, 3)
	spanByEra := make(map[Era]int, 3)
	for year := MinYear; year <= MaxYear; year++ {
		era := GetEraBucket(year)
		spanByEra[era]++

		total := totals[year]
		switch {
		case total == 0:
			gaps.MissingYears = append(gaps.MissingYears, year)
		case total < MinEventsPerYear:
			gaps.InsufficientYears = append(gaps.InsufficientYears, year)
		}
		if total > 0 {
			coveredByEra[era]++
		}
	}

	for _, era := range []Era{EraAncient, EraMedieval, EraModern} {
		span := spanByEra[era]
		if span == 0 {
			gaps.CoverageByEra[era] = 0
			continue
		}
		gaps.CoverageByEra[era] = float64(coveredByEra[era]) / float64(span)
	}

	return gaps
}

// Report is the ops-facing coverage summary with pool-size aggregates.
type Report struct {
	Gaps             Gaps    `json:"gaps"`
	YearsWithEvents  int     `json:"years_with_events"`
	TotalEvents      int     `json:"total_events"`
	MeanPerYear      float64 `json:"mean_per_year"`
	MedianPerYear    float64 `json:"median_per_year"`
	P90PerYear       float64 `json:"p90_per_year"`
	AvailableEvents  int     `json:"available_events"`
	UsedEvents       int     `json:"used_events"`
	MostStockedYear  int     `json:"most_stocked_year"`
	MostStockedCount int     `json:"most_stocked_count"`
}

// BuildReport aggregates pool stats into a coverage report. The per-year
// distribution summaries only consider years that have at least one event;
// missing years are reported through Gaps instead.
func BuildReport(yearStats []event.YearStat) Report {
	report := Report{Gaps: AnalyzeCoverage(yearStats)}

	counts := make([]float64, 0, len(yearStats))
	for _, s := range yearStats {
		if s.Total == 0 {
			continue
		}
		counts = append(counts, float64(s.Total))
		report.YearsWithEvents++
		report.TotalEvents += s.Total
		report.AvailableEvents += s.Available
		report.UsedEvents += s.Used
		if s.Total > report.MostStockedCount {
			report.MostStockedCount = s.Total
			report.MostStockedYear = s.Year
		}
	}

	if len(counts) == 0 {
		return report
	}

	// stats errors only on empty input, which is handled above.
	report.MeanPerYear, _ = stats.Mean(counts)
	report.MedianPerYear, _ = stats.Median(counts)
	report.P90PerYear, _ = stats.Percentile(counts, 90)
	return report
}
