package app

import (
	"context"
	"fmt"
	"log"

	"chronle/ai"
	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/internal/usage"
	"chronle/internal/vet"
	"chronle/models"
	"chronle/ports"
)

// GenerationService produces vetted candidate events for one target year:
// an era-aware prompt, one structured model call, the deterministic safety
// net, then persistence into the year's pool.
type GenerationService struct {
	client    *ai.StructuredClient[ai.EventBatch]
	prompts   *ai.PromptManager
	events    ports.EventRepository
	usage     *usage.Service
	minEvents int
	maxEvents int
	maxWords  int
}

// GenerationConfig bounds one generation call
type GenerationConfig struct {
	MinEventsPerCall int
	MaxEventsPerCall int
	MaxWordsPerClue  int
}

// YearResult is the outcome of generating events for one year
type YearResult struct {
	Year      int
	Generated int
	Rejected  int
	Imported  []event.PoolEvent
	CostUSD   float64
}

// NewGenerationService creates an event generation service
func NewGenerationService(client *ai.StructuredClient[ai.EventBatch], prompts *ai.PromptManager, events ports.EventRepository, usageService *usage.Service, config GenerationConfig) *GenerationService {
	if config.MinEventsPerCall <= 0 {
		config.MinEventsPerCall = 6
	}
	if config.MaxEventsPerCall <= 0 {
		config.MaxEventsPerCall = 12
	}
	if config.MaxWordsPerClue <= 0 {
		config.MaxWordsPerClue = vet.DefaultMaxWords
	}
	return &GenerationService{
		client:    client,
		prompts:   prompts,
		events:    events,
		usage:     usageService,
		minEvents: config.MinEventsPerCall,
		maxEvents: config.MaxEventsPerCall,
		maxWords:  config.MaxWordsPerClue,
	}
}

// GenerateForYear runs one generation call for the target year and imports
// every event that survives the deterministic safety net. Returns
// ErrInsufficientYield when fewer than the minimum survive; already-imported
// events stay in the pool either way.
func (s *GenerationService) GenerateForYear(ctx context.Context, year int) (*YearResult, error) {
	system, err := s.prompts.RenderPrompt(ai.PromptEventGenerationSystem, map[string]string{
		"MAX_WORDS": fmt.Sprintf("%d", s.maxWords),
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	user, err := s.prompts.RenderPrompt(ai.PromptEventGenerationUser, map[string]string{
		"YEAR_LABEL":   ai.FormatYearLabel(year),
		"ERA_GUIDANCE": ai.EraGuidance(year),
		"MIN_COUNT":    fmt.Sprintf("%d", s.minEvents),
		"MAX_COUNT":    fmt.Sprintf("%d", s.maxEvents),
	})
	if err != nil {
		return nil, fmt.Errorf("render user prompt: %w", err)
	}

	// The cache key is derived from the system prompt and the stage tag.
	// The system prompt is identical for every year, so the tag must not
	// embed the year or no two calls in a batch would ever share a cached
	// prompt. The year lives in the usage record instead.
	result, err := s.client.Generate(ctx, system, user, "event_batch", ai.EventBatchSchema, models.OpEventGeneration)
	if err != nil {
		return nil, fmt.Errorf("generation call for year %d: %w", year, err)
	}

	if s.usage != nil {
		y := year
		stageTag := fmt.Sprintf("%s:%d", models.OpEventGeneration, year)
		s.usage.RecordGeneration(ctx, models.OpEventGeneration, stageTag, &y, result.Usage, result.Cost, result.Model, result.CacheHit)
	}

	accepted, rejected := s.vetBatch(year, result.Data.Events)

	yearResult := &YearResult{
		Year:      year,
		Generated: len(result.Data.Events),
		Rejected:  rejected,
		CostUSD:   result.Cost.TotalUSD,
	}

	if len(accepted) > 0 {
		imported, err := s.events.ImportEvents(ctx, year, accepted)
		if err != nil {
			return nil, fmt.Errorf("import events for year %d: %w", year, err)
		}
		yearResult.Imported = imported
	}

	if len(accepted) < s.minEvents {
		log.Printf("[GenerationService] year %d: %d/%d events survived vetting", year, len(accepted), len(result.Data.Events))
		return yearResult, fmt.Errorf("year %d yielded %d events, need %d: %w", year, len(accepted), s.minEvents, core.ErrInsufficientYield)
	}

	log.Printf("[GenerationService] year %d: imported %d events (%d rejected, $%.4f)", year, len(accepted), rejected, result.Cost.TotalUSD)
	return yearResult, nil
}

// vetBatch runs schema and safety-net checks over a generated batch
func (s *GenerationService) vetBatch(year int, generated []ai.GeneratedEvent) ([]event.CandidateEvent, int) {
	accepted := make([]event.CandidateEvent, 0, len(generated))
	rejected := 0

	for _, g := range generated {
		candidate := event.CandidateEvent{
			Text:       g.Text,
			Title:      g.Title,
			Category:   event.Category(g.Category),
			Difficulty: g.Difficulty,
			Region:     g.Region,
		}
		if err := candidate.Validate(); err != nil {
			log.Printf("[GenerationService] year %d: rejected %q: %v", year, g.Title, err)
			rejected++
			continue
		}
		if check := vet.Check(candidate, s.maxWords); !check.Passed {
			log.Printf("[GenerationService] year %d: rejected %q: %s", year, g.Title, check.Reason)
			rejected++
			continue
		}
		accepted = append(accepted, candidate)
	}

	return accepted, rejected
}
