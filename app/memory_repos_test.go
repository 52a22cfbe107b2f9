package app

import (
	"context"
	"sync"
	"time"

	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/domain/puzzle"
	"chronle/models"
)

// memoryEventRepo is an in-memory EventRepository for service tests
type memoryEventRepo struct {
	mu     sync.Mutex
	events []event.PoolEvent
}

func (r *memoryEventRepo) ImportEvents(_ context.Context, year int, events []event.CandidateEvent) ([]event.PoolEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	imported := make([]event.PoolEvent, 0, len(events))
	for _, candidate := range events {
		pooled := event.PoolEvent{
			ID:        core.EventID(core.NewID()),
			Year:      year,
			Event:     candidate,
			CreatedAt: core.Now(),
		}
		r.events = append(r.events, pooled)
		imported = append(imported, pooled)
	}
	return imported, nil
}

func (r *memoryEventRepo) GetYearStats(_ context.Context) ([]event.YearStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byYear := make(map[int]*event.YearStat)
	years := []int{}
	for _, pooled := range r.events {
		stat, ok := byYear[pooled.Year]
		if !ok {
			stat = &event.YearStat{Year: pooled.Year}
			byYear[pooled.Year] = stat
			years = append(years, pooled.Year)
		}
		stat.Total++
		if pooled.Used {
			stat.Used++
		} else {
			stat.Available++
		}
	}
	stats := make([]event.YearStat, 0, len(years))
	for _, year := range years {
		stats = append(stats, *byYear[year])
	}
	return stats, nil
}

func (r *memoryEventRepo) GetAvailableEvents(_ context.Context, year int) ([]event.PoolEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	available := []event.PoolEvent{}
	for _, pooled := range r.events {
		if pooled.Year == year && !pooled.Used {
			available = append(available, pooled)
		}
	}
	return available, nil
}

func (r *memoryEventRepo) MarkUsed(_ context.Context, ids []core.EventID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[core.EventID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for i := range r.events {
		if _, ok := wanted[r.events[i].ID]; ok {
			r.events[i].Used = true
		}
	}
	return nil
}

// memoryPuzzleRepo is an in-memory PuzzleRepository for service tests
type memoryPuzzleRepo struct {
	mu      sync.Mutex
	puzzles map[core.PuzzleID]*puzzle.Puzzle
}

func newMemoryPuzzleRepo() *memoryPuzzleRepo {
	return &memoryPuzzleRepo{puzzles: make(map[core.PuzzleID]*puzzle.Puzzle)}
}

func (r *memoryPuzzleRepo) SavePuzzle(_ context.Context, p *puzzle.Puzzle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puzzles[p.ID] = p
	return nil
}

func (r *memoryPuzzleRepo) GetPuzzle(_ context.Context, id core.PuzzleID) (*puzzle.Puzzle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.puzzles[id]
	if !ok {
		return nil, core.ErrPuzzleNotFound
	}
	return p, nil
}

func (r *memoryPuzzleRepo) GetPuzzleByDay(_ context.Context, day string) (*puzzle.Puzzle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.puzzles {
		if p.Day == day {
			return p, nil
		}
	}
	return nil, core.ErrPuzzleNotFound
}

// memoryAttemptRepo is an in-memory AttemptRepository enforcing the
// one-attempt-per-(user,puzzle) constraint
type memoryAttemptRepo struct {
	mu       sync.Mutex
	attempts []*puzzle.OrderAttempt
}

func (r *memoryAttemptRepo) SaveAttempt(_ context.Context, attempt *puzzle.OrderAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attempts {
		if existing.UserID == attempt.UserID && existing.PuzzleID == attempt.PuzzleID {
			return core.ErrAttemptExists
		}
	}
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *memoryAttemptRepo) GetAttempt(_ context.Context, userID core.UserID, puzzleID core.PuzzleID) (*puzzle.OrderAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, attempt := range r.attempts {
		if attempt.UserID == userID && attempt.PuzzleID == puzzleID {
			return attempt, nil
		}
	}
	return nil, core.ErrAttemptNotFound
}

func (r *memoryAttemptRepo) ListUserAttempts(_ context.Context, userID core.UserID) ([]*puzzle.OrderAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := []*puzzle.OrderAttempt{}
	for _, attempt := range r.attempts {
		if attempt.UserID == userID {
			matches = append(matches, attempt)
		}
	}
	return matches, nil
}

// memoryUsageRepo records usage rows for assertion
type memoryUsageRepo struct {
	mu      sync.Mutex
	records []*models.LLMUsage
}

func (r *memoryUsageRepo) RecordUsage(_ context.Context, usage *models.LLMUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, usage)
	return nil
}

func (r *memoryUsageRepo) GetUsage(_ context.Context, _, _ time.Time) ([]*models.LLMUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.LLMUsage{}, r.records...), nil
}

func (r *memoryUsageRepo) GetUsageSummary(_ context.Context, start, end time.Time) (*models.UsageSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &models.UsageSummary{
		PeriodStart: start,
		PeriodEnd:   end,
		ByModel:     make(map[string]models.ModelUsage),
	}
	for _, record := range r.records {
		summary.RequestCount++
		summary.InputTokens += record.InputTokens
		summary.OutputTokens += record.OutputTokens
		summary.TotalTokens += record.InputTokens + record.OutputTokens
		summary.TotalUSD += record.TotalUSD
	}
	return summary, nil
}
