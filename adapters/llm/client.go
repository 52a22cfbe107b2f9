// Package llm implements the OpenAI-backed transport for the structured
// model client, plus a scripted mock for tests.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chronle/ports"
)

// Config holds transport-level settings for the provider client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenAIClient implements ports.LLMClient against the chat-completions
// API with JSON-schema structured output.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewOpenAIClient creates a provider client from config.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second // reasoning models are slow
	}

	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Complete issues one chat-completions call with the response schema
// embedded as a structured-output constraint and the deterministic cache
// key passed through for provider-side prompt caching.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type jsonSchema struct {
		Name   string          `json:"name"`
		Strict bool            `json:"strict"`
		Schema json.RawMessage `json:"schema"`
	}
	type responseFormat struct {
		Type       string      `json:"type"`
		JSONSchema *jsonSchema `json:"json_schema,omitempty"`
	}
	type reqBody struct {
		Model               string          `json:"model"`
		Messages            []msg           `json:"messages"`
		MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
		ResponseFormat      *responseFormat `json:"response_format,omitempty"`
		ReasoningEffort     string          `json:"reasoning_effort,omitempty"`
		PromptCacheKey      string          `json:"prompt_cache_key,omitempty"`
	}

	body := reqBody{
		Model: req.Model,
		Messages: []msg{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxCompletionTokens: req.MaxTokens,
		ReasoningEffort:     req.ReasoningEffort,
		PromptCacheKey:      req.CacheKey,
	}
	if len(req.ResponseSchema) > 0 {
		body.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.ResponseSchema,
			},
		}
	} else {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ports.ProviderError{StatusCode: resp.StatusCode, Body: string(respRaw)}
	}

	type respBody struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens        int `json:"prompt_tokens"`
			CompletionTokens    int `json:"completion_tokens"`
			PromptTokensDetails struct {
				CachedTokens int `json:"cached_tokens"`
			} `json:"prompt_tokens_details"`
			CompletionTokensDetails struct {
				ReasoningTokens int `json:"reasoning_tokens"`
			} `json:"completion_tokens_details"`
		} `json:"usage"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("openai response missing choices")
	}

	model := decoded.Model
	if model == "" {
		model = req.Model
	}

	return &ports.CompletionResponse{
		Content: decoded.Choices[0].Message.Content,
		Usage: ports.TokenUsage{
			InputTokens:     decoded.Usage.PromptTokens,
			OutputTokens:    decoded.Usage.CompletionTokens,
			ReasoningTokens: decoded.Usage.CompletionTokensDetails.ReasoningTokens,
		},
		Model:    model,
		CacheHit: decoded.Usage.PromptTokensDetails.CachedTokens > 0,
	}, nil
}

// MockLLMClient is a scripted LLM client for testing
type MockLLMClient struct {
	Responses []*ports.CompletionResponse // Consumed in order
	Errors    []error                     // Consumed alongside Responses
	Requests  []ports.CompletionRequest   // Records every call
}

func (m *MockLLMClient) Complete(_ context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	m.Requests = append(m.Requests, req)
	i := len(m.Requests) - 1

	if i < len(m.Errors) && m.Errors[i] != nil {
		return nil, m.Errors[i]
	}
	if i < len(m.Responses) && m.Responses[i] != nil {
		return m.Responses[i], nil
	}
	// Default mock response
	return &ports.CompletionResponse{
		Content: `{"events": []}`,
		Usage:   ports.TokenUsage{InputTokens: 100, OutputTokens: 50},
		Model:   req.Model,
	}, nil
}
