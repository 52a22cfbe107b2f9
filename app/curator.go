package app

import (
	"context"
	"fmt"
	"log"
	"sort"

	"chronle/ai"
	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/domain/puzzle"
	"chronle/internal/quality"
	"chronle/internal/usage"
	"chronle/models"
	"chronle/ports"
)

// PuzzleSize is the number of events in a published puzzle
const PuzzleSize = 6

// minPuzzleCategories is the diversity floor for a published event set
const minPuzzleCategories = 3

// Curator assembles daily puzzles from the vetted event pool. An optional
// LLM judge recommends the event set; its verdict is advisory and every
// accepted set still passes the deterministic quality checks.
type Curator struct {
	judge   *ai.StructuredClient[ai.JudgeVerdict]
	prompts *ai.PromptManager
	events  ports.EventRepository
	puzzles ports.PuzzleRepository
	usage   *usage.Service
}

// NewCurator creates a puzzle curator. A nil judge disables the LLM pass;
// composition then falls back to deterministic selection only.
func NewCurator(judge *ai.StructuredClient[ai.JudgeVerdict], prompts *ai.PromptManager, events ports.EventRepository, puzzles ports.PuzzleRepository, usageService *usage.Service) *Curator {
	return &Curator{
		judge:   judge,
		prompts: prompts,
		events:  events,
		puzzles: puzzles,
		usage:   usageService,
	}
}

// ComposePuzzle builds and publishes the puzzle for a YYYY-MM-DD day slot
// from the given candidate years. It needs at least PuzzleSize years with
// available events; selected events are marked used on publish.
func (c *Curator) ComposePuzzle(ctx context.Context, day string, years []int) (*puzzle.Puzzle, error) {
	candidates, err := c.gatherCandidates(ctx, years)
	if err != nil {
		return nil, err
	}

	selected := c.judgeSelection(ctx, candidates)
	if selected == nil {
		selected, err = c.deterministicSelection(candidates)
		if err != nil {
			return nil, err
		}
	}

	if err := c.verifySelection(selected); err != nil {
		return nil, fmt.Errorf("selected set failed quality checks: %w", err)
	}

	candidateEvents := make([]event.CandidateEvent, 0, PuzzleSize)
	for _, candidate := range selected {
		candidateEvents = append(candidateEvents, candidate.Event)
	}
	scores := quality.ComputeComposition(candidateEvents)
	log.Printf("[Curator] %s composition: diversity %.2f, spread %.2f, gradient %.2f, guessability %.2f",
		day, scores.TopicDiversity, scores.GeographicSpread, scores.DifficultyGradient, scores.Guessability)

	events := make([]event.OrderEvent, 0, PuzzleSize)
	ids := make([]core.EventID, 0, PuzzleSize)
	for _, candidate := range selected {
		events = append(events, event.OrderEvent{
			ID:   candidate.ID,
			Year: candidate.Year,
			Text: candidate.Event.Text,
		})
		ids = append(ids, candidate.ID)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Year < events[j].Year })

	p := &puzzle.Puzzle{
		ID:        core.PuzzleID(core.NewID()),
		Day:       day,
		Events:    events,
		CreatedAt: core.Now(),
	}

	if err := c.puzzles.SavePuzzle(ctx, p); err != nil {
		return nil, fmt.Errorf("save puzzle for %s: %w", day, err)
	}
	if err := c.events.MarkUsed(ctx, ids); err != nil {
		return nil, fmt.Errorf("mark events used for %s: %w", day, err)
	}

	log.Printf("[Curator] published puzzle %s for %s with %d events", p.ID, day, len(events))
	return p, nil
}

// gatherCandidates collects available events from the candidate years,
// keeping only years that actually have stock.
func (c *Curator) gatherCandidates(ctx context.Context, years []int) ([]event.PoolEvent, error) {
	candidates := make([]event.PoolEvent, 0, len(years)*2)
	yearsWithStock := 0

	for _, year := range years {
		available, err := c.events.GetAvailableEvents(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("load events for year %d: %w", year, err)
		}
		if len(available) == 0 {
			continue
		}
		yearsWithStock++
		candidates = append(candidates, available...)
	}

	if yearsWithStock < PuzzleSize {
		return nil, fmt.Errorf("only %d years have available events, need %d: %w", yearsWithStock, PuzzleSize, core.ErrNotEnoughCandidates)
	}
	return candidates, nil
}

// judgeSelection runs the LLM judge over the candidates and returns the
// recommended events, or nil when the judge is disabled, fails, or
// recommends a set that does not check out.
func (c *Curator) judgeSelection(ctx context.Context, candidates []event.PoolEvent) []event.PoolEvent {
	if c.judge == nil {
		return nil
	}

	judgment, err := c.JudgeBatch(ctx, candidates)
	if err != nil {
		log.Printf("[Curator] judge pass failed, falling back to deterministic selection: %v", err)
		return nil
	}
	if !judgment.Approved {
		log.Printf("[Curator] judge rejected batch (score %.2f): %v", judgment.QualityScore, judgment.Issues)
		return nil
	}

	byID := make(map[core.EventID]event.PoolEvent, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.ID] = candidate
	}

	selected := make([]event.PoolEvent, 0, PuzzleSize)
	for _, raw := range judgment.Ordering.EventIDs {
		candidate, ok := byID[core.EventID(raw)]
		if !ok {
			log.Printf("[Curator] judge recommended unknown event id %q, discarding verdict", raw)
			return nil
		}
		selected = append(selected, candidate)
	}
	if err := c.verifySelection(selected); err != nil {
		log.Printf("[Curator] judge recommendation failed deterministic checks: %v", err)
		return nil
	}
	return selected
}

// JudgeBatch issues one judge-schema model call over a candidate batch.
func (c *Curator) JudgeBatch(ctx context.Context, candidates []event.PoolEvent) (*puzzle.Judgment, error) {
	system, err := c.prompts.LoadPrompt(ai.PromptPuzzleJudgeSystem)
	if err != nil {
		return nil, fmt.Errorf("load judge system prompt: %w", err)
	}

	lines := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		lines = append(lines, fmt.Sprintf("%s | %s | %s", candidate.ID, ai.FormatYearLabel(candidate.Year), candidate.Event.Text))
	}
	user, err := c.prompts.RenderPrompt(ai.PromptPuzzleJudgeUser, map[string]string{
		"CANDIDATES": ai.FormatCandidateList(lines),
	})
	if err != nil {
		return nil, fmt.Errorf("render judge user prompt: %w", err)
	}

	result, err := c.judge.Generate(ctx, system, user, "judge_verdict", ai.JudgeVerdictSchema, models.OpPuzzleJudgment)
	if err != nil {
		return nil, fmt.Errorf("judge call: %w", err)
	}

	if c.usage != nil {
		c.usage.RecordGeneration(ctx, models.OpPuzzleJudgment, models.OpPuzzleJudgment, nil, result.Usage, result.Cost, result.Model, result.CacheHit)
	}

	verdict := result.Data
	return &puzzle.Judgment{
		Approved:     verdict.Approved,
		QualityScore: verdict.QualityScore,
		Ordering: puzzle.OrderingRecommendation{
			EventIDs:  verdict.EventIDs,
			Rationale: verdict.Rationale,
		},
		Composition: puzzle.CompositionScores{
			TopicDiversity:     verdict.Composition.TopicDiversity,
			GeographicSpread:   verdict.Composition.GeographicSpread,
			DifficultyGradient: verdict.Composition.DifficultyGradient,
			Guessability:       verdict.Composition.Guessability,
		},
		Issues:      verdict.Issues,
		Suggestions: verdict.Suggestions,
	}, nil
}

// deterministicSelection picks one event per year, famous events first,
// preferring picks that keep the set non-redundant and topically diverse.
func (c *Curator) deterministicSelection(candidates []event.PoolEvent) ([]event.PoolEvent, error) {
	byYear := make(map[int][]event.PoolEvent)
	for _, candidate := range candidates {
		byYear[candidate.Year] = append(byYear[candidate.Year], candidate)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	selected := make([]event.PoolEvent, 0, PuzzleSize)
	usedCategories := make(map[event.Category]int)
	for _, year := range years {
		if len(selected) == PuzzleSize {
			break
		}
		pool := byYear[year]
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Event.Difficulty < pool[j].Event.Difficulty
		})

		pick := pool[0]
		// Prefer a category the set does not have yet.
		for _, candidate := range pool {
			if usedCategories[candidate.Event.Category] == 0 {
				pick = candidate
				break
			}
		}
		selected = append(selected, pick)
		usedCategories[pick.Event.Category]++
	}

	if len(selected) < PuzzleSize {
		return nil, core.ErrNotEnoughCandidates
	}
	return selected, nil
}

// verifySelection enforces the deterministic floor every published set
// must clear, judge-approved or not.
func (c *Curator) verifySelection(selected []event.PoolEvent) error {
	if len(selected) != PuzzleSize {
		return fmt.Errorf("got %d events, need %d", len(selected), PuzzleSize)
	}

	seenIDs := make(map[core.EventID]struct{}, len(selected))
	seenYears := make(map[int]struct{}, len(selected))
	hints := make([]string, 0, len(selected))
	events := make([]event.CandidateEvent, 0, len(selected))
	for _, candidate := range selected {
		if _, dup := seenIDs[candidate.ID]; dup {
			return core.ErrDuplicateEventIDs
		}
		seenIDs[candidate.ID] = struct{}{}
		if _, dup := seenYears[candidate.Year]; dup {
			return fmt.Errorf("duplicate year %d in selection", candidate.Year)
		}
		seenYears[candidate.Year] = struct{}{}
		hints = append(hints, candidate.Event.Text)
		events = append(events, candidate.Event)
	}

	if quality.HasObviousRedundancy(hints) {
		return fmt.Errorf("selection has redundant clues")
	}
	if !quality.HasTopicDiversity(events, minPuzzleCategories) {
		return fmt.Errorf("selection covers fewer than %d categories", minPuzzleCategories)
	}
	return nil
}
