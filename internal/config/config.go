package config

import (
	"os"
	"strconv"
	"time"

	"chronle/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	AI         AIConfig
	Server     ServerConfig
	Generation GenerationConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	OpenAIKey     string
	Model         string
	FallbackModel string
	MaxTokens     int
	MaxAttempts   int
	BackoffBase   time.Duration
	Timeout       time.Duration
	PromptsDir    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	OpsPort string
	GinMode string
}

// GenerationConfig holds content-generation pipeline settings
type GenerationConfig struct {
	MinEventsPerCall int
	MaxEventsPerCall int
	MaxWordsPerClue  int
	BatchSize        int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	config.Database = DatabaseConfig{
		URL:     dbURL,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, errors.ConfigInvalid("OPENAI_API_KEY is required")
	}
	config.AI = AIConfig{
		OpenAIKey:     openaiKey,
		Model:         getEnvOrDefault("LLM_MODEL", "gpt-5.2"),
		FallbackModel: getEnvOrDefault("LLM_FALLBACK_MODEL", "gpt-4.1"),
		MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", 8000),
		MaxAttempts:   getEnvIntOrDefault("LLM_MAX_ATTEMPTS", 3),
		BackoffBase:   getEnvDurationOrDefault("LLM_BACKOFF_BASE", 500*time.Millisecond),
		Timeout:       getEnvDurationOrDefault("LLM_TIMEOUT", 180*time.Second),
		PromptsDir:    getEnvOrDefault("PROMPTS_DIR", ""),
	}

	config.Server = ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		OpsPort: getEnvOrDefault("OPS_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}

	config.Generation = GenerationConfig{
		MinEventsPerCall: getEnvIntOrDefault("MIN_EVENTS_PER_CALL", 6),
		MaxEventsPerCall: getEnvIntOrDefault("MAX_EVENTS_PER_CALL", 12),
		MaxWordsPerClue:  getEnvIntOrDefault("MAX_WORDS_PER_CLUE", 20),
		BatchSize:        getEnvIntOrDefault("GENERATION_BATCH_SIZE", 9),
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
