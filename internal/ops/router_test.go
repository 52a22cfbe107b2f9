package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/internal/usage"
	"chronle/models"
)

type fakeEventRepo struct {
	stats []event.YearStat
}

func (r *fakeEventRepo) ImportEvents(_ context.Context, _ int, _ []event.CandidateEvent) ([]event.PoolEvent, error) {
	return nil, nil
}

func (r *fakeEventRepo) GetYearStats(_ context.Context) ([]event.YearStat, error) {
	return r.stats, nil
}

func (r *fakeEventRepo) GetAvailableEvents(_ context.Context, _ int) ([]event.PoolEvent, error) {
	return nil, nil
}

func (r *fakeEventRepo) MarkUsed(_ context.Context, _ []core.EventID) error {
	return nil
}

type fakeUsageRepo struct{}

func (r *fakeUsageRepo) RecordUsage(_ context.Context, _ *models.LLMUsage) error { return nil }

func (r *fakeUsageRepo) GetUsage(_ context.Context, _, _ time.Time) ([]*models.LLMUsage, error) {
	return nil, nil
}

func (r *fakeUsageRepo) GetUsageSummary(_ context.Context, start, end time.Time) (*models.UsageSummary, error) {
	return &models.UsageSummary{
		PeriodStart:  start,
		PeriodEnd:    end,
		RequestCount: 7,
		TotalUSD:     1.25,
		ByModel:      map[string]models.ModelUsage{},
	}, nil
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(&fakeEventRepo{}, usage.NewService(&fakeUsageRepo{}))

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCoverageEndpoint(t *testing.T) {
	repo := &fakeEventRepo{stats: []event.YearStat{
		{Year: 1969, Total: 8, Used: 2, Available: 6},
		{Year: 1066, Total: 4, Used: 0, Available: 4},
	}}
	router := NewRouter(repo, usage.NewService(&fakeUsageRepo{}))

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coverage", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		YearsWithEvents int `json:"years_with_events"`
		TotalEvents     int `json:"total_events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.YearsWithEvents != 2 || body.TotalEvents != 12 {
		t.Errorf("unexpected report: %+v", body)
	}
}

func TestUsageEndpoint(t *testing.T) {
	router := NewRouter(&fakeEventRepo{}, usage.NewService(&fakeUsageRepo{}))

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usage?start=2026-08-01&end=2026-08-30", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		RequestCount int     `json:"request_count"`
		TotalUSD     float64 `json:"total_usd"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.RequestCount != 7 {
		t.Errorf("expected 7 requests, got %d", body.RequestCount)
	}
}

func TestUsageEndpointRejectsBadDates(t *testing.T) {
	router := NewRouter(&fakeEventRepo{}, usage.NewService(&fakeUsageRepo{}))

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usage?start=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
