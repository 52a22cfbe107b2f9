// Package excel exports operator reports as xlsx workbooks: pool
// coverage on one sheet, model spend on another.
package excel

import (
	"fmt"

	"chronle/domain/event"
	"chronle/internal/coverage"
	"chronle/models"

	"github.com/xuri/excelize/v2"
)

// ReportWriter builds the coverage-and-cost workbook
type ReportWriter struct{}

// NewReportWriter creates a report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteReport writes the workbook to path. Sheet1 carries per-year pool
// stats, Sheet2 the coverage summary, Sheet3 the spend summary.
func (w *ReportWriter) WriteReport(path string, stats []event.YearStat, report coverage.Report, summary *models.UsageSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writePoolSheet(f, stats); err != nil {
		return fmt.Errorf("write pool sheet: %w", err)
	}
	if err := w.writeCoverageSheet(f, report); err != nil {
		return fmt.Errorf("write coverage sheet: %w", err)
	}
	if summary != nil {
		if err := w.writeSpendSheet(f, summary); err != nil {
			return fmt.Errorf("write spend sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *ReportWriter) writePoolSheet(f *excelize.File, stats []event.YearStat) error {
	const sheet = "Pool"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Year", "Era", "Total", "Used", "Available"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, stat := range stats {
		row := i + 2
		values := []interface{}{
			stat.Year,
			string(coverage.GetEraBucket(stat.Year)),
			stat.Total,
			stat.Used,
			stat.Available,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *ReportWriter) writeCoverageSheet(f *excelize.File, report coverage.Report) error {
	const sheet = "Coverage"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Years with events", report.YearsWithEvents},
		{"Total events", report.TotalEvents},
		{"Available events", report.AvailableEvents},
		{"Used events", report.UsedEvents},
		{"Missing years", len(report.Gaps.MissingYears)},
		{"Insufficient years", len(report.Gaps.InsufficientYears)},
		{"Mean events per covered year", report.MeanPerYear},
		{"Median events per covered year", report.MedianPerYear},
		{"P90 events per covered year", report.P90PerYear},
	}
	for _, era := range []coverage.Era{coverage.EraAncient, coverage.EraMedieval, coverage.EraModern} {
		rows = append(rows, []interface{}{
			fmt.Sprintf("Coverage fraction (%s)", era),
			report.Gaps.CoverageByEra[era],
		})
	}

	for r, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *ReportWriter) writeSpendSheet(f *excelize.File, summary *models.UsageSummary) error {
	const sheet = "Spend"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Period start", summary.PeriodStart.Format("2006-01-02")},
		{"Period end", summary.PeriodEnd.Format("2006-01-02")},
		{"Requests", summary.RequestCount},
		{"Input tokens", summary.InputTokens},
		{"Output tokens", summary.OutputTokens},
		{"Reasoning tokens", summary.ReasoningTokens},
		{"Total USD", summary.TotalUSD},
		{"Cache savings USD", summary.CacheSavingsUSD},
		{"Cache hits", summary.CacheHitCount},
		{},
		{"Model", "Requests", "Tokens", "USD"},
	}
	for _, usage := range summary.ByModel {
		rows = append(rows, []interface{}{usage.Model, usage.RequestCount, usage.TotalTokens, usage.TotalUSD})
	}

	for r, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
