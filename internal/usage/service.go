package usage

import (
	"context"
	"log"
	"time"

	"chronle/ai"
	"chronle/models"
	"chronle/ports"

	"github.com/google/uuid"
)

// Service handles LLM usage tracking and persistence
type Service struct {
	repo ports.LLMUsageRepository
}

// NewService creates a new usage service
func NewService(repo ports.LLMUsageRepository) *Service {
	return &Service{repo: repo}
}

// RecordGeneration asynchronously records usage and cost for one
// generation call. Tracking failures never fail the caller.
func (s *Service) RecordGeneration(ctx context.Context, operationType, stageTag string, year *int, usage ports.TokenUsage, cost ai.Cost, model string, cacheHit bool) error {
	if usage.InputTokens < 0 || usage.OutputTokens < 0 || usage.ReasoningTokens < 0 {
		log.Printf("[UsageService] ERROR: invalid token counts: %+v", usage)
		return nil
	}

	record := &models.LLMUsage{
		ID:              uuid.New(),
		Provider:        "openai",
		Model:           model,
		OperationType:   operationType,
		StageTag:        stageTag,
		Year:            year,
		InputTokens:     usage.InputTokens,
		OutputTokens:    usage.OutputTokens,
		ReasoningTokens: usage.ReasoningTokens,
		InputUSD:        cost.InputUSD,
		OutputUSD:       cost.OutputUSD,
		CacheSavingsUSD: cost.CacheSavingsUSD,
		TotalUSD:        cost.TotalUSD,
		CacheHit:        cacheHit,
		CreatedAt:       time.Now(),
	}

	// Async persistence to avoid blocking generation calls
	go func() {
		if err := s.persistWithRetry(record); err != nil {
			log.Printf("[UsageService] ERROR: failed to persist usage after retries: %v", err)
		}
	}()

	return nil
}

// persistWithRetry attempts to persist usage with a short backoff
func (s *Service) persistWithRetry(record *models.LLMUsage) error {
	const maxRetries = 3
	const baseDelay = 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := s.repo.RecordUsage(context.Background(), record); err == nil {
			return nil
		}
		if attempt < maxRetries-1 {
			time.Sleep(time.Duration(attempt+1) * baseDelay)
		}
	}

	// Final attempt
	return s.repo.RecordUsage(context.Background(), record)
}

// GetUsageSummary returns aggregated usage for a time period
func (s *Service) GetUsageSummary(ctx context.Context, start, end time.Time) (*models.UsageSummary, error) {
	return s.repo.GetUsageSummary(ctx, start, end)
}

// GetUsage returns detailed usage records for a time period
func (s *Service) GetUsage(ctx context.Context, start, end time.Time) ([]*models.LLMUsage, error) {
	return s.repo.GetUsage(ctx, start, end)
}
