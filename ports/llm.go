// Package ports defines the interfaces between the pipeline and its
// external collaborators: the model provider and the persistence store.
package ports

import (
	"context"
	"encoding/json"
	"fmt"
)

// TokenUsage is the provider-reported token accounting for one call.
// Reasoning tokens are tracked separately from output when the provider
// reports them; they matter for observability, not the cost formula.
type TokenUsage struct {
	InputTokens     int `json:"input_tokens"`
	OutputTokens    int `json:"output_tokens"`
	ReasoningTokens int `json:"reasoning_tokens"`
}

// CompletionRequest is one provider-agnostic structured-generation request.
type CompletionRequest struct {
	Model           string            `json:"model"`
	System          string            `json:"system"`
	User            string            `json:"user"`
	MaxTokens       int               `json:"max_tokens"`
	SchemaName      string            `json:"schema_name"`
	ResponseSchema  json.RawMessage   `json:"response_schema"`
	ReasoningEffort string            `json:"reasoning_effort,omitempty"`
	CacheKey        string            `json:"cache_key"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// CompletionResponse carries the raw model content plus usage metadata.
type CompletionResponse struct {
	Content  string     `json:"content"`
	Usage    TokenUsage `json:"usage"`
	Model    string     `json:"model"`
	CacheHit bool       `json:"cache_hit"`
}

// LLMClient is the transport-level interface for a model provider.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderError is a transport-level failure from the model provider.
// Rate limits and server errors are retryable; everything else is not.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider http %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the call is worth re-issuing with backoff.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
