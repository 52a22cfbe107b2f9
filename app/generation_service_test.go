package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"chronle/adapters/llm"
	"chronle/ai"
	"chronle/domain/core"
	"chronle/internal/usage"
	"chronle/ports"
)

func testClientConfig() ai.Config {
	return ai.Config{
		Model:         "test-model",
		FallbackModel: "test-fallback",
		MaxAttempts:   1,
		MaxTokens:     1000,
		Sleep:         func(context.Context, time.Duration) {},
		Jitter:        func(d time.Duration) time.Duration { return d },
	}
}

func validBatchJSON(t *testing.T) string {
	t.Helper()
	batch := ai.EventBatch{Events: []ai.GeneratedEvent{
		{Text: "Napoleon crosses the high Alps with his army", Title: "Alpine crossing", Category: "war", Difficulty: 2, Region: "Europe"},
		{Text: "Galileo points his telescope at the moons of Jupiter", Title: "Jovian moons", Category: "science", Difficulty: 1, Region: "Italy"},
		{Text: "Queen Victoria opens a vast glass exhibition hall in London", Title: "Great Exhibition", Category: "culture", Difficulty: 2, Region: "Britain"},
		{Text: "Monks in Kyoto finish casting a great bronze temple bell", Title: "Temple bell", Category: "religion", Difficulty: 4, Region: "Japan"},
		{Text: "Merchants from Venice open a new spice route eastward", Title: "Spice route", Category: "economy", Difficulty: 3, Region: "Mediterranean"},
		{Text: "Engineers in Paris raise a lattice tower of iron", Title: "Iron tower", Category: "technology", Difficulty: 1, Region: "France"},
	}}
	raw, err := json.Marshal(batch)
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	return string(raw)
}

func TestGenerateForYearImportsVettedEvents(t *testing.T) {
	mock := &llm.MockLLMClient{
		Responses: []*ports.CompletionResponse{{
			Content: validBatchJSON(t),
			Usage:   ports.TokenUsage{InputTokens: 900, OutputTokens: 400},
			Model:   "test-model",
		}},
	}
	client := ai.NewStructuredClient[ai.EventBatch](mock, testClientConfig())
	events := &memoryEventRepo{}
	usageRepo := &memoryUsageRepo{}
	service := NewGenerationService(client, ai.NewPromptManager(""), events, usage.NewService(usageRepo), GenerationConfig{})

	result, err := service.GenerateForYear(context.Background(), 1851)
	if err != nil {
		t.Fatalf("GenerateForYear failed: %v", err)
	}
	if result.Generated != 6 {
		t.Errorf("expected 6 generated, got %d", result.Generated)
	}
	if result.Rejected != 0 {
		t.Errorf("expected 0 rejected, got %d", result.Rejected)
	}
	if len(result.Imported) != 6 {
		t.Errorf("expected 6 imported, got %d", len(result.Imported))
	}
	for _, pooled := range result.Imported {
		if pooled.Year != 1851 {
			t.Errorf("imported event carries year %d, want 1851", pooled.Year)
		}
		if pooled.Used {
			t.Error("freshly imported event marked used")
		}
	}
	if result.CostUSD <= 0 {
		t.Errorf("expected positive cost, got %f", result.CostUSD)
	}
}

func TestGenerateForYearPromptCarriesEraGuidance(t *testing.T) {
	mock := &llm.MockLLMClient{
		Responses: []*ports.CompletionResponse{{
			Content: validBatchJSON(t),
			Model:   "test-model",
		}},
	}
	client := ai.NewStructuredClient[ai.EventBatch](mock, testClientConfig())
	service := NewGenerationService(client, ai.NewPromptManager(""), &memoryEventRepo{}, nil, GenerationConfig{})

	if _, err := service.GenerateForYear(context.Background(), -490); err != nil {
		t.Fatalf("GenerateForYear failed: %v", err)
	}
	if len(mock.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(mock.Requests))
	}
	req := mock.Requests[0]
	if !strings.Contains(req.User, "490 BCE") {
		t.Errorf("user prompt missing BCE year label: %q", req.User)
	}
	if !strings.Contains(req.User, ai.EraGuidance(-490)) {
		t.Error("user prompt missing era guidance block")
	}
	if req.CacheKey == "" {
		t.Error("request missing cache key")
	}
}

func TestGenerateForYearSharesCacheKeyAcrossYears(t *testing.T) {
	mock := &llm.MockLLMClient{
		Responses: []*ports.CompletionResponse{
			{Content: validBatchJSON(t), Model: "test-model"},
			{Content: validBatchJSON(t), Model: "test-model"},
		},
	}
	client := ai.NewStructuredClient[ai.EventBatch](mock, testClientConfig())
	service := NewGenerationService(client, ai.NewPromptManager(""), &memoryEventRepo{}, nil, GenerationConfig{})

	if _, err := service.GenerateForYear(context.Background(), -490); err != nil {
		t.Fatalf("first GenerateForYear failed: %v", err)
	}
	if _, err := service.GenerateForYear(context.Background(), 1851); err != nil {
		t.Fatalf("second GenerateForYear failed: %v", err)
	}
	if len(mock.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(mock.Requests))
	}

	// The system prompt is year-independent, so both calls must present
	// the same prompt_cache_key to the provider or the cached-input
	// discount never applies across a batch.
	if mock.Requests[0].CacheKey == "" {
		t.Fatal("request missing cache key")
	}
	if mock.Requests[0].CacheKey != mock.Requests[1].CacheKey {
		t.Errorf("cache keys differ across years: %q vs %q", mock.Requests[0].CacheKey, mock.Requests[1].CacheKey)
	}
}

func TestGenerateForYearRejectsLeakyEvents(t *testing.T) {
	batch := ai.EventBatch{Events: []ai.GeneratedEvent{
		// Leaks a large numeral.
		{Text: "Rome celebrates 900 years since its founding", Title: "Anniversary", Category: "culture", Difficulty: 3, Region: "Italy"},
		// Forbidden term.
		{Text: "A new century dawns over the Frankish realm", Title: "New era", Category: "politics", Difficulty: 3, Region: "Europe"},
		// Valid.
		{Text: "Galileo points his telescope at the moons of Jupiter", Title: "Jovian moons", Category: "science", Difficulty: 1, Region: "Italy"},
	}}
	raw, _ := json.Marshal(batch)

	mock := &llm.MockLLMClient{
		Responses: []*ports.CompletionResponse{{Content: string(raw), Model: "test-model"}},
	}
	client := ai.NewStructuredClient[ai.EventBatch](mock, testClientConfig())
	events := &memoryEventRepo{}
	service := NewGenerationService(client, ai.NewPromptManager(""), events, nil, GenerationConfig{})

	result, err := service.GenerateForYear(context.Background(), 1610)
	if !errors.Is(err, core.ErrInsufficientYield) {
		t.Fatalf("expected ErrInsufficientYield, got %v", err)
	}
	if result == nil {
		t.Fatal("expected partial result alongside yield error")
	}
	if result.Rejected != 2 {
		t.Errorf("expected 2 rejected, got %d", result.Rejected)
	}
	// Survivors stay in the pool even when the batch starves.
	if len(result.Imported) != 1 {
		t.Errorf("expected 1 imported survivor, got %d", len(result.Imported))
	}
	available, _ := events.GetAvailableEvents(context.Background(), 1610)
	if len(available) != 1 {
		t.Errorf("expected 1 pooled event, got %d", len(available))
	}
}

func TestGenerateForYearPropagatesProviderFailure(t *testing.T) {
	mock := &llm.MockLLMClient{
		Errors: []error{&ports.ProviderError{StatusCode: 401, Body: "bad key"}},
	}
	client := ai.NewStructuredClient[ai.EventBatch](mock, testClientConfig())
	service := NewGenerationService(client, ai.NewPromptManager(""), &memoryEventRepo{}, nil, GenerationConfig{})

	if _, err := service.GenerateForYear(context.Background(), 1851); err == nil {
		t.Fatal("expected error from provider failure")
	}
}
