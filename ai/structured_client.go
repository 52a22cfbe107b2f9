// Package ai implements the structured model client: one
// (system, user, schema) triple in, one schema-validated typed result out,
// with retry, provider fallback, prompt caching, and cost accounting
// hidden behind the call.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"chronle/domain/core"
	"chronle/ports"
)

// Config holds structured-client settings. Sleep and Jitter are injectable
// so tests can run the retry loop instantly and deterministically.
type Config struct {
	Model         string
	FallbackModel string
	MaxAttempts   int
	BackoffBase   time.Duration
	MaxTokens     int
	Sleep         func(context.Context, time.Duration)
	Jitter        func(time.Duration) time.Duration
}

// sleepContext waits out d but returns as soon as ctx is cancelled, so a
// cancelled batch never sits through a full backoff.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// DefaultConfig returns production retry settings for the given models.
func DefaultConfig(model, fallbackModel string) Config {
	return Config{
		Model:         model,
		FallbackModel: fallbackModel,
		MaxAttempts:   3,
		BackoffBase:   500 * time.Millisecond,
		MaxTokens:     8000,
		Sleep:         sleepContext,
		Jitter: func(d time.Duration) time.Duration {
			// Up to 25% added jitter so concurrent retries spread out.
			return d + time.Duration(rand.Int63n(int64(d)/4+1))
		},
	}
}

// Result wraps a schema-validated response with its provenance.
type Result[T any] struct {
	Data     T
	Usage    ports.TokenUsage
	Cost     Cost
	Model    string
	CacheHit bool
	CacheKey core.CacheKey
}

// StructuredClient provides typed JSON responses from LLM calls
type StructuredClient[T any] struct {
	llm    ports.LLMClient
	config Config
}

// NewStructuredClient creates a structured client over a transport. The
// client carries no hidden global state; callers own construction and
// configuration.
func NewStructuredClient[T any](llm ports.LLMClient, config Config) *StructuredClient[T] {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = 500 * time.Millisecond
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}
	if config.Jitter == nil {
		config.Jitter = func(d time.Duration) time.Duration { return d }
	}
	return &StructuredClient[T]{llm: llm, config: config}
}

// Generate issues one structured-generation request: retries the primary
// model on retryable transport failures with exponential backoff, falls
// back to the secondary model once after exhaustion, and validates the
// response content against T. Schema violations are terminal; retrying a
// malformed-prone call inside the same budget does not help.
func (c *StructuredClient[T]) Generate(ctx context.Context, system, user string, schemaName string, schema json.RawMessage, stageTag string) (*Result[T], error) {
	cacheKey := core.ComputeCacheKey(system, stageTag)

	req := ports.CompletionRequest{
		Model:          c.config.Model,
		System:         system,
		User:           user,
		MaxTokens:      c.config.MaxTokens,
		SchemaName:     schemaName,
		ResponseSchema: schema,
		CacheKey:       cacheKey.String(),
		Metadata:       map[string]string{"stage": stageTag},
	}

	resp, err := c.completeWithRetry(ctx, req)
	if err != nil {
		var provErr *ports.ProviderError
		retryable := errors.As(err, &provErr) && provErr.Retryable()
		if retryable && c.config.FallbackModel != "" {
			log.Printf("[StructuredClient] Primary model %s exhausted, falling back to %s (stage=%s)",
				c.config.Model, c.config.FallbackModel, stageTag)
			req.Model = c.config.FallbackModel
			resp, err = c.llm.Complete(ctx, req)
		}
		if err != nil {
			if retryable {
				return nil, fmt.Errorf("%w: %v", core.ErrProvidersExhausted, err)
			}
			return nil, fmt.Errorf("model request failed: %w", err)
		}
	}

	data, err := parseContent[T](resp.Content)
	if err != nil {
		log.Printf("[StructuredClient] ERROR: Schema violation from model %s (stage=%s): %v", resp.Model, stageTag, err)
		return nil, fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
	}

	return &Result[T]{
		Data:     *data,
		Usage:    resp.Usage,
		Cost:     ComputeCost(resp.Usage, resp.Model, resp.CacheHit),
		Model:    resp.Model,
		CacheHit: resp.CacheHit,
		CacheKey: cacheKey,
	}, nil
}

// completeWithRetry runs the primary-model retry loop: backoff doubles per
// attempt and only retryable provider errors are re-issued.
func (c *StructuredClient[T]) completeWithRetry(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		resp, err := c.llm.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var provErr *ports.ProviderError
		if !errors.As(err, &provErr) || !provErr.Retryable() {
			return nil, err
		}
		if attempt == c.config.MaxAttempts-1 {
			break
		}

		backoff := c.config.Jitter(c.config.BackoffBase * (1 << attempt))
		log.Printf("[StructuredClient] Retryable failure on %s (attempt %d/%d), backing off %v: %v",
			req.Model, attempt+1, c.config.MaxAttempts, backoff, err)

		c.config.Sleep(ctx, backoff)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// parseContent cleans and unmarshals model output into the typed result.
func parseContent[T any](content string) (*T, error) {
	cleaned := cleanJSONContent(content)

	var result T
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON content into result type: %w", err)
	}
	return &result, nil
}

// cleanJSONContent removes markdown code blocks and chatter around the
// JSON payload. Structured-output mode makes this mostly redundant, but
// fallback models occasionally wrap their answer anyway.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// If chatter precedes the JSON object, trim up to the first brace.
	if strings.Contains(content, "\n{") {
		parts := strings.SplitN(content, "\n{", 2)
		if len(parts) == 2 && !strings.Contains(parts[0], "{") && !strings.Contains(parts[0], "[") {
			content = "{" + parts[1]
		}
	} else if strings.Contains(content, "\n[") {
		parts := strings.SplitN(content, "\n[", 2)
		if len(parts) == 2 && !strings.Contains(parts[0], "{") && !strings.Contains(parts[0], "[") {
			content = "[" + parts[1]
		}
	}

	return content
}
