package postgres

import (
	"context"
	"database/sql"
	"time"

	"chronle/models"
	"chronle/ports"

	"github.com/jmoiron/sqlx"
)

// LLMUsageRepositoryImpl implements LLMUsageRepository for PostgreSQL
type LLMUsageRepositoryImpl struct {
	db *sqlx.DB
}

// NewLLMUsageRepository creates a new PostgreSQL LLM usage repository
func NewLLMUsageRepository(db *sqlx.DB) ports.LLMUsageRepository {
	return &LLMUsageRepositoryImpl{db: db}
}

// RecordUsage records token usage and cost for one model call
func (r *LLMUsageRepositoryImpl) RecordUsage(ctx context.Context, usage *models.LLMUsage) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, provider, model, operation_type, stage_tag, year,
			input_tokens, output_tokens, reasoning_tokens,
			input_usd, output_usd, cache_savings_usd, total_usd,
			cache_hit, created_at
		) VALUES (
			:id, :provider, :model, :operation_type, :stage_tag, :year,
			:input_tokens, :output_tokens, :reasoning_tokens,
			:input_usd, :output_usd, :cache_savings_usd, :total_usd,
			:cache_hit, :created_at
		)
	`, usage)
	return err
}

// GetUsage retrieves usage records within a date range
func (r *LLMUsageRepositoryImpl) GetUsage(ctx context.Context, start, end time.Time) ([]*models.LLMUsage, error) {
	var usages []*models.LLMUsage
	err := r.db.SelectContext(ctx, &usages, `
		SELECT id, provider, model, operation_type, stage_tag, year,
		       input_tokens, output_tokens, reasoning_tokens,
		       input_usd, output_usd, cache_savings_usd, total_usd,
		       cache_hit, created_at
		FROM llm_usage
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`, start, end)
	return usages, err
}

// GetUsageSummary returns aggregated usage statistics for a period
func (r *LLMUsageRepositoryImpl) GetUsageSummary(ctx context.Context, start, end time.Time) (*models.UsageSummary, error) {
	summary := &models.UsageSummary{
		PeriodStart: start,
		PeriodEnd:   end,
		ByModel:     make(map[string]models.ModelUsage),
	}

	var totals struct {
		RequestCount    int     `db:"request_count"`
		InputTokens     int     `db:"input_tokens"`
		OutputTokens    int     `db:"output_tokens"`
		ReasoningTokens int     `db:"reasoning_tokens"`
		TotalUSD        float64 `db:"total_usd"`
		CacheSavingsUSD float64 `db:"cache_savings_usd"`
		CacheHitCount   int     `db:"cache_hit_count"`
	}
	err := r.db.GetContext(ctx, &totals, `
		SELECT
			COUNT(*) AS request_count,
			COALESCE(SUM(input_tokens), 0) AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens,
			COALESCE(SUM(reasoning_tokens), 0) AS reasoning_tokens,
			COALESCE(SUM(total_usd), 0) AS total_usd,
			COALESCE(SUM(cache_savings_usd), 0) AS cache_savings_usd,
			COUNT(*) FILTER (WHERE cache_hit) AS cache_hit_count
		FROM llm_usage
		WHERE created_at >= $1 AND created_at <= $2
	`, start, end)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	summary.RequestCount = totals.RequestCount
	summary.InputTokens = totals.InputTokens
	summary.OutputTokens = totals.OutputTokens
	summary.ReasoningTokens = totals.ReasoningTokens
	summary.TotalTokens = totals.InputTokens + totals.OutputTokens
	summary.TotalUSD = totals.TotalUSD
	summary.CacheSavingsUSD = totals.CacheSavingsUSD
	summary.CacheHitCount = totals.CacheHitCount

	var modelRows []struct {
		Model        string  `db:"model"`
		TotalTokens  int     `db:"total_tokens"`
		TotalUSD     float64 `db:"total_usd"`
		RequestCount int     `db:"request_count"`
	}
	err = r.db.SelectContext(ctx, &modelRows, `
		SELECT model,
		       COALESCE(SUM(input_tokens + output_tokens), 0) AS total_tokens,
		       COALESCE(SUM(total_usd), 0) AS total_usd,
		       COUNT(*) AS request_count
		FROM llm_usage
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY model
	`, start, end)
	if err != nil {
		return nil, err
	}
	for _, row := range modelRows {
		summary.ByModel[row.Model] = models.ModelUsage{
			Model:        row.Model,
			TotalTokens:  row.TotalTokens,
			TotalUSD:     row.TotalUSD,
			RequestCount: row.RequestCount,
		}
	}

	return summary, nil
}
