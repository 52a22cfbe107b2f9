package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"chronle/adapters/llm"
	"chronle/ai"
	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/ports"
)

func seedPool(t *testing.T, repo *memoryEventRepo, years ...int) map[int]event.PoolEvent {
	t.Helper()
	clues := []event.CandidateEvent{
		{Text: "Napoleon crosses the high Alps with his army", Title: "Alpine crossing", Category: event.CategoryWar, Difficulty: 2, Region: "Europe"},
		{Text: "Galileo points his telescope at the moons of Jupiter", Title: "Jovian moons", Category: event.CategoryScience, Difficulty: 1, Region: "Italy"},
		{Text: "Queen Victoria opens a vast glass exhibition hall in London", Title: "Great Exhibition", Category: event.CategoryCulture, Difficulty: 2, Region: "Britain"},
		{Text: "Monks in Kyoto finish casting a great bronze temple bell", Title: "Temple bell", Category: event.CategoryReligion, Difficulty: 4, Region: "Japan"},
		{Text: "Merchants from Venice open a new spice route eastward", Title: "Spice route", Category: event.CategoryEconomy, Difficulty: 3, Region: "Mediterranean"},
		{Text: "Engineers in Paris raise a lattice tower of iron", Title: "Iron tower", Category: event.CategoryTechnology, Difficulty: 1, Region: "France"},
		{Text: "Sailors from Lisbon round a stormy southern cape", Title: "Southern cape", Category: event.CategoryExploration, Difficulty: 3, Region: "Atlantic"},
	}

	seeded := make(map[int]event.PoolEvent, len(years))
	for i, year := range years {
		imported, err := repo.ImportEvents(context.Background(), year, []event.CandidateEvent{clues[i%len(clues)]})
		if err != nil {
			t.Fatalf("seed year %d: %v", year, err)
		}
		seeded[year] = imported[0]
	}
	return seeded
}

func TestComposePuzzleDeterministicPath(t *testing.T) {
	events := &memoryEventRepo{}
	years := []int{-776, 451, 1066, 1492, 1851, 1969}
	seedPool(t, events, years...)
	puzzles := newMemoryPuzzleRepo()

	curator := NewCurator(nil, ai.NewPromptManager(""), events, puzzles, nil)
	p, err := curator.ComposePuzzle(context.Background(), "2026-08-30", years)
	if err != nil {
		t.Fatalf("ComposePuzzle failed: %v", err)
	}

	if len(p.Events) != PuzzleSize {
		t.Fatalf("expected %d events, got %d", PuzzleSize, len(p.Events))
	}
	for i := 1; i < len(p.Events); i++ {
		if p.Events[i-1].Year >= p.Events[i].Year {
			t.Errorf("events not stored chronologically: %d before %d", p.Events[i-1].Year, p.Events[i].Year)
		}
	}

	// Selected events must be consumed from the pool.
	for _, year := range years {
		available, _ := events.GetAvailableEvents(context.Background(), year)
		if len(available) != 0 {
			t.Errorf("year %d still has %d available events after publish", year, len(available))
		}
	}

	// Published puzzle is retrievable by day.
	loaded, err := puzzles.GetPuzzleByDay(context.Background(), "2026-08-30")
	if err != nil {
		t.Fatalf("GetPuzzleByDay failed: %v", err)
	}
	if loaded.ID != p.ID {
		t.Errorf("loaded puzzle %s, want %s", loaded.ID, p.ID)
	}
}

func TestComposePuzzleNeedsSixYearsWithStock(t *testing.T) {
	events := &memoryEventRepo{}
	years := []int{1066, 1492, 1851}
	seedPool(t, events, years...)

	curator := NewCurator(nil, ai.NewPromptManager(""), events, newMemoryPuzzleRepo(), nil)
	_, err := curator.ComposePuzzle(context.Background(), "2026-08-30", years)
	if !errors.Is(err, core.ErrNotEnoughCandidates) {
		t.Fatalf("expected ErrNotEnoughCandidates, got %v", err)
	}
}

func TestComposePuzzleFollowsApprovedJudgeVerdict(t *testing.T) {
	events := &memoryEventRepo{}
	years := []int{-776, 451, 1066, 1492, 1851, 1969}
	seeded := seedPool(t, events, years...)

	verdict := ai.JudgeVerdict{
		Approved:     true,
		QualityScore: 0.85,
		Rationale:    "diverse and well spread",
	}
	for _, year := range years {
		verdict.EventIDs = append(verdict.EventIDs, seeded[year].ID.String())
	}
	raw, _ := json.Marshal(verdict)

	mock := &llm.MockLLMClient{
		Responses: []*ports.CompletionResponse{{Content: string(raw), Model: "test-model"}},
	}
	judge := ai.NewStructuredClient[ai.JudgeVerdict](mock, testClientConfig())

	curator := NewCurator(judge, ai.NewPromptManager(""), events, newMemoryPuzzleRepo(), nil)
	p, err := curator.ComposePuzzle(context.Background(), "2026-08-30", years)
	if err != nil {
		t.Fatalf("ComposePuzzle failed: %v", err)
	}
	if len(mock.Requests) != 1 {
		t.Fatalf("expected 1 judge call, got %d", len(mock.Requests))
	}
	if len(p.Events) != PuzzleSize {
		t.Fatalf("expected %d events, got %d", PuzzleSize, len(p.Events))
	}
}

func TestComposePuzzleDiscardsVerdictWithUnknownIDs(t *testing.T) {
	events := &memoryEventRepo{}
	years := []int{-776, 451, 1066, 1492, 1851, 1969}
	seedPool(t, events, years...)

	verdict := ai.JudgeVerdict{
		Approved:     true,
		QualityScore: 0.9,
		EventIDs:     []string{"ghost-1", "ghost-2", "ghost-3", "ghost-4", "ghost-5", "ghost-6"},
	}
	raw, _ := json.Marshal(verdict)

	mock := &llm.MockLLMClient{
		Responses: []*ports.CompletionResponse{{Content: string(raw), Model: "test-model"}},
	}
	judge := ai.NewStructuredClient[ai.JudgeVerdict](mock, testClientConfig())

	curator := NewCurator(judge, ai.NewPromptManager(""), events, newMemoryPuzzleRepo(), nil)
	// Falls back to deterministic selection instead of failing.
	p, err := curator.ComposePuzzle(context.Background(), "2026-08-30", years)
	if err != nil {
		t.Fatalf("ComposePuzzle failed: %v", err)
	}
	if len(p.Events) != PuzzleSize {
		t.Fatalf("expected %d events, got %d", PuzzleSize, len(p.Events))
	}
}

func TestComposePuzzleFallsBackWhenJudgeErrors(t *testing.T) {
	events := &memoryEventRepo{}
	years := []int{-776, 451, 1066, 1492, 1851, 1969}
	seedPool(t, events, years...)

	mock := &llm.MockLLMClient{
		Errors: []error{&ports.ProviderError{StatusCode: 401, Body: "bad key"}},
	}
	judge := ai.NewStructuredClient[ai.JudgeVerdict](mock, testClientConfig())

	curator := NewCurator(judge, ai.NewPromptManager(""), events, newMemoryPuzzleRepo(), nil)
	p, err := curator.ComposePuzzle(context.Background(), "2026-08-30", years)
	if err != nil {
		t.Fatalf("ComposePuzzle failed: %v", err)
	}
	if len(p.Events) != PuzzleSize {
		t.Fatalf("expected %d events, got %d", PuzzleSize, len(p.Events))
	}
}
