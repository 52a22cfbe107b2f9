package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMUsage represents a single LLM API call's token usage and cost
type LLMUsage struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Provider        string    `json:"provider" db:"provider"`
	Model           string    `json:"model" db:"model"`
	OperationType   string    `json:"operation_type" db:"operation_type"`
	StageTag        string    `json:"stage_tag" db:"stage_tag"`
	Year            *int      `json:"year,omitempty" db:"year"`
	InputTokens     int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens    int       `json:"output_tokens" db:"output_tokens"`
	ReasoningTokens int       `json:"reasoning_tokens" db:"reasoning_tokens"`
	InputUSD        float64   `json:"input_usd" db:"input_usd"`
	OutputUSD       float64   `json:"output_usd" db:"output_usd"`
	CacheSavingsUSD float64   `json:"cache_savings_usd" db:"cache_savings_usd"`
	TotalUSD        float64   `json:"total_usd" db:"total_usd"`
	CacheHit        bool      `json:"cache_hit" db:"cache_hit"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// UsageSummary provides aggregated usage statistics for a period
type UsageSummary struct {
	PeriodStart     time.Time             `json:"period_start"`
	PeriodEnd       time.Time             `json:"period_end"`
	RequestCount    int                   `json:"request_count"`
	TotalTokens     int                   `json:"total_tokens"`
	InputTokens     int                   `json:"input_tokens"`
	OutputTokens    int                   `json:"output_tokens"`
	ReasoningTokens int                   `json:"reasoning_tokens"`
	TotalUSD        float64               `json:"total_usd"`
	CacheSavingsUSD float64               `json:"cache_savings_usd"`
	CacheHitCount   int                   `json:"cache_hit_count"`
	ByModel         map[string]ModelUsage `json:"by_model"`
}

// ModelUsage represents usage aggregated by model
type ModelUsage struct {
	Model        string  `json:"model"`
	TotalTokens  int     `json:"total_tokens"`
	TotalUSD     float64 `json:"total_usd"`
	RequestCount int     `json:"request_count"`
}

// Operation types for categorization
const (
	OpEventGeneration = "event_generation"
	OpPuzzleJudgment  = "puzzle_judgment"
)
