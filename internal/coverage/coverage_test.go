package coverage

import (
	"testing"

	"chronle/domain/event"
)

func TestEraBucketBoundaries(t *testing.T) {
	cases := []struct {
		year int
		want Era
	}{
		{-776, EraAncient},
		{0, EraAncient},
		{500, EraAncient},
		{501, EraMedieval},
		{1000, EraMedieval},
		{1499, EraMedieval},
		{1500, EraModern},
		{2008, EraModern},
	}

	for _, tc := range cases {
		if got := GetEraBucket(tc.year); got != tc.want {
			t.Errorf("GetEraBucket(%d) = %s, want %s", tc.year, got, tc.want)
		}
	}
}

func TestAnalyzeCoverageGaps(t *testing.T) {
	yearStats := []event.YearStat{
		{Year: 1500, Total: 10, Used: 4, Available: 6},
		{Year: 1600, Total: 3, Used: 0, Available: 3},
		{Year: 400, Total: 7, Used: 1, Available: 6},
	}

	gaps := AnalyzeCoverage(yearStats)

	// Every year except the three above is missing.
	span := MaxYear - MinYear + 1
	if len(gaps.MissingYears) != span-3 {
		t.Errorf("expected %d missing years, got %d", span-3, len(gaps.MissingYears))
	}

	if len(gaps.InsufficientYears) != 1 || gaps.InsufficientYears[0] != 1600 {
		t.Errorf("expected [1600] insufficient, got %v", gaps.InsufficientYears)
	}

	ancientSpan := 500 - MinYear + 1
	wantAncient := 1.0 / float64(ancientSpan)
	if got := gaps.CoverageByEra[EraAncient]; got != wantAncient {
		t.Errorf("ancient coverage = %f, want %f", got, wantAncient)
	}
	if got := gaps.CoverageByEra[EraMedieval]; got != 0 {
		t.Errorf("medieval coverage = %f, want 0", got)
	}
}

func TestAnalyzeCoverageEmptyPool(t *testing.T) {
	gaps := AnalyzeCoverage(nil)

	if len(gaps.MissingYears) != MaxYear-MinYear+1 {
		t.Errorf("expected every year missing, got %d", len(gaps.MissingYears))
	}
	for era, frac := range gaps.CoverageByEra {
		if frac != 0 {
			t.Errorf("era %s coverage = %f, want 0", era, frac)
		}
	}
}

func TestPickBalancedYearsCoversAllEras(t *testing.T) {
	candidates := []Candidate{
		{Year: 1700, Severity: 0.9, Source: SourceMissing},
		{Year: 300, Severity: 0.5, Source: SourceLowQuality},
		{Year: 900, Severity: 0.7, Source: SourceMissing},
	}

	picked := PickBalancedYears(candidates, 3)
	if len(picked) != 3 {
		t.Fatalf("expected 3 years, got %d: %v", len(picked), picked)
	}

	eras := make(map[Era]bool)
	for _, year := range picked {
		eras[GetEraBucket(year)] = true
	}
	for _, era := range []Era{EraAncient, EraMedieval, EraModern} {
		if !eras[era] {
			t.Errorf("era %s not represented in %v", era, picked)
		}
	}
}

func TestPickBalancedYearsDeduplicates(t *testing.T) {
	candidates := []Candidate{
		{Year: 1600, Severity: 0.9, Source: SourceMissing},
		{Year: 1600, Severity: 0.1, Source: SourceFallback},
		{Year: 1700, Severity: 0.5, Source: SourceMissing},
	}

	picked := PickBalancedYears(candidates, 3)
	if len(picked) != 2 {
		t.Fatalf("expected 2 unique years, got %v", picked)
	}
	if picked[0] == picked[1] {
		t.Errorf("duplicate year returned: %v", picked)
	}
}

func TestPickBalancedYearsSeverityWithinEra(t *testing.T) {
	candidates := []Candidate{
		{Year: 1510, Severity: 0.2, Source: SourceMissing},
		{Year: 1520, Severity: 0.9, Source: SourceMissing},
		{Year: 1530, Severity: 0.5, Source: SourceMissing},
	}

	picked := PickBalancedYears(candidates, 1)
	if len(picked) != 1 || picked[0] != 1520 {
		t.Errorf("expected most severe year 1520, got %v", picked)
	}
}

func TestPickBalancedYearsFillOrder(t *testing.T) {
	// All modern so the era pass takes one; the fill must then prefer
	// missing over low_quality over fallback, then severity.
	candidates := []Candidate{
		{Year: 1900, Severity: 0.9, Source: SourceFallback},
		{Year: 1910, Severity: 0.1, Source: SourceMissing},
		{Year: 1920, Severity: 0.8, Source: SourceLowQuality},
		{Year: 1930, Severity: 0.95, Source: SourceMissing},
	}

	picked := PickBalancedYears(candidates, 3)
	if len(picked) != 3 {
		t.Fatalf("expected 3 years, got %v", picked)
	}
	// Era pass takes 1930 (highest severity in the only populated era),
	// then the fill takes 1910 (missing) before 1920 (low_quality).
	if picked[0] != 1930 || picked[1] != 1910 || picked[2] != 1920 {
		t.Errorf("unexpected fill order: %v", picked)
	}
}

func TestPickBalancedYearsBounds(t *testing.T) {
	if got := PickBalancedYears(nil, 5); got != nil {
		t.Errorf("empty candidates should yield nil, got %v", got)
	}
	if got := PickBalancedYears([]Candidate{{Year: 1600}}, 0); got != nil {
		t.Errorf("count 0 should yield nil, got %v", got)
	}

	picked := PickBalancedYears([]Candidate{{Year: 1600, Source: SourceMissing}}, 5)
	if len(picked) != 1 {
		t.Errorf("expected 1 year when only 1 candidate, got %v", picked)
	}
}

func TestBuildReportAggregates(t *testing.T) {
	yearStats := []event.YearStat{
		{Year: 1500, Total: 10, Used: 4, Available: 6},
		{Year: 1600, Total: 2, Used: 1, Available: 1},
		{Year: 1700, Total: 6, Used: 0, Available: 6},
	}

	report := BuildReport(yearStats)

	if report.TotalEvents != 18 {
		t.Errorf("total events = %d, want 18", report.TotalEvents)
	}
	if report.YearsWithEvents != 3 {
		t.Errorf("years with events = %d, want 3", report.YearsWithEvents)
	}
	if report.MeanPerYear != 6 {
		t.Errorf("mean per year = %f, want 6", report.MeanPerYear)
	}
	if report.MedianPerYear != 6 {
		t.Errorf("median per year = %f, want 6", report.MedianPerYear)
	}
	if report.MostStockedYear != 1500 || report.MostStockedCount != 10 {
		t.Errorf("most stocked = %d (%d), want 1500 (10)", report.MostStockedYear, report.MostStockedCount)
	}
	if report.AvailableEvents != 13 || report.UsedEvents != 5 {
		t.Errorf("available/used = %d/%d, want 13/5", report.AvailableEvents, report.UsedEvents)
	}
}
