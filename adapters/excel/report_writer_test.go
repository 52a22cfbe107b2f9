package excel

import (
	"path/filepath"
	"testing"
	"time"

	"chronle/domain/event"
	"chronle/internal/coverage"
	"chronle/models"

	"github.com/xuri/excelize/v2"
)

func TestWriteReportProducesAllSheets(t *testing.T) {
	stats := []event.YearStat{
		{Year: -776, Total: 6, Used: 0, Available: 6},
		{Year: 1066, Total: 8, Used: 6, Available: 2},
		{Year: 1969, Total: 10, Used: 6, Available: 4},
	}
	report := coverage.BuildReport(stats)
	summary := &models.UsageSummary{
		PeriodStart:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		RequestCount: 42,
		TotalUSD:     3.17,
		ByModel: map[string]models.ModelUsage{
			"gpt-5.2": {Model: "gpt-5.2", TotalTokens: 90000, TotalUSD: 3.17, RequestCount: 42},
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := NewReportWriter().WriteReport(path, stats, report, summary); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Pool", "Coverage", "Spend"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %s", sheet)
		}
	}

	year, err := f.GetCellValue("Pool", "A2")
	if err != nil {
		t.Fatalf("read Pool!A2: %v", err)
	}
	if year != "-776" {
		t.Errorf("Pool!A2 = %q, want -776", year)
	}
	era, _ := f.GetCellValue("Pool", "B2")
	if era != "ancient" {
		t.Errorf("Pool!B2 = %q, want ancient", era)
	}
}

func TestWriteReportWithoutSpendSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage-only.xlsx")
	stats := []event.YearStat{{Year: 1500, Total: 6, Available: 6}}
	if err := NewReportWriter().WriteReport(path, stats, coverage.BuildReport(stats), nil); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("Spend"); idx >= 0 {
		t.Error("Spend sheet should be absent without a summary")
	}
}
