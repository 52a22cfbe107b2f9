package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"chronle/domain/core"
	"chronle/internal/coverage"
	"chronle/ports"

	"golang.org/x/sync/errgroup"
)

// BatchRunner plans a generation batch from coverage gaps and fans the
// per-year work out across a bounded worker group. One year's failure
// never aborts the rest of the batch.
type BatchRunner struct {
	generator *GenerationService
	events    ports.EventRepository
	workers   int
}

// BatchResult summarizes one generation batch
type BatchResult struct {
	Planned   []int
	Succeeded []int
	Starved   []int
	Failed    map[int]error
	TotalUSD  float64
}

// NewBatchRunner creates a batch runner with a bounded worker pool
func NewBatchRunner(generator *GenerationService, events ports.EventRepository, workers int) *BatchRunner {
	if workers <= 0 {
		workers = 3
	}
	return &BatchRunner{
		generator: generator,
		events:    events,
		workers:   workers,
	}
}

// PlanYears derives the next batch of target years from pool coverage:
// missing years first, then under-filled years, balanced across eras.
func (r *BatchRunner) PlanYears(ctx context.Context, count int) ([]int, error) {
	stats, err := r.events.GetYearStats(ctx)
	if err != nil {
		return nil, err
	}

	gaps := coverage.AnalyzeCoverage(stats)

	candidates := make([]coverage.Candidate, 0, len(gaps.MissingYears)+len(gaps.InsufficientYears))
	for _, year := range gaps.MissingYears {
		candidates = append(candidates, coverage.Candidate{
			Year:     year,
			Severity: float64(coverage.MinEventsPerYear),
			Source:   coverage.SourceMissing,
		})
	}

	totals := make(map[int]int, len(stats))
	for _, s := range stats {
		totals[s.Year] = s.Total
	}
	for _, year := range gaps.InsufficientYears {
		candidates = append(candidates, coverage.Candidate{
			Year:     year,
			Severity: float64(coverage.MinEventsPerYear - totals[year]),
			Source:   coverage.SourceLowQuality,
		})
	}

	return coverage.PickBalancedYears(candidates, count), nil
}

// Run generates events for every planned year concurrently. Years whose
// yield falls below the minimum are reported as starved rather than failed;
// their surviving events are already in the pool.
func (r *BatchRunner) Run(ctx context.Context, years []int) *BatchResult {
	result := &BatchResult{
		Planned: years,
		Failed:  make(map[int]error),
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for _, year := range years {
		year := year
		group.Go(func() error {
			yearResult, err := r.generator.GenerateForYear(groupCtx, year)

			mu.Lock()
			defer mu.Unlock()
			if yearResult != nil {
				result.TotalUSD += yearResult.CostUSD
			}
			switch {
			case err == nil:
				result.Succeeded = append(result.Succeeded, year)
			case errors.Is(err, core.ErrInsufficientYield):
				result.Starved = append(result.Starved, year)
			default:
				result.Failed[year] = err
			}
			// Failures are collected, not propagated; returning the
			// error would cancel sibling years.
			return nil
		})
	}

	group.Wait()

	log.Printf("[BatchRunner] batch done: %d succeeded, %d starved, %d failed, $%.4f total",
		len(result.Succeeded), len(result.Starved), len(result.Failed), result.TotalUSD)
	return result
}
