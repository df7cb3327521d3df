// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// data sources, the completion provider, timeouts, and routing keywords.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Completion provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data sources
	FAQPath     string // CSV with question,answer columns
	CoursesPath string // CSV with Название,Описание,Цена,Длительность columns
	DataDir     string // Directory for the SQLite transcript archive

	// Completion (LLM fallback)
	CompletionProvider string        // "openai" or "gemini"
	CompletionModel    string        // empty = provider default
	CompletionTimeout  time.Duration // bounded wait for the external call
	CompletionRetries  int           // extra attempts via the retry decorator, 0 = disabled
	OpenAIAPIKey       string
	OpenAIBaseURL      string // custom endpoint for OpenAI-compatible providers
	GeminiAPIKey       string

	// Conversation memory
	MaxHistoryTurns int // 0 = unbounded (the documented default)

	// Retrieval enhancement for the fallback stage
	RetrievalEnabled bool
	RetrievalTopK    int
	EmbeddingAPIKey  string // OpenAI key for the vector side; empty = BM25 only

	// Chat rate limiting (per client IP)
	ChatRateBurst  float64 // bucket capacity, 0 = rate limiting disabled
	ChatRateRefill float64 // tokens per second

	// Metrics Authentication
	MetricsUsername string
	MetricsPassword string // empty = no auth on /metrics

	// Sentry
	SentryEnabled     bool
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack log shipping
	BetterstackToken    string
	BetterstackEndpoint string

	// Routing keyword configuration (embedded)
	Routing RoutingConfig
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "8080"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		FAQPath:     getEnv(EnvFAQPath, "data/faq.csv"),
		CoursesPath: getEnv(EnvCoursesPath, "data/courses.csv"),
		DataDir:     getEnv(EnvDataDir, "./data"),

		CompletionProvider: getEnv(EnvCompletionProvider, ProviderOpenAI),
		CompletionModel:    getEnv(EnvCompletionModel, ""),
		CompletionTimeout:  getDurationEnv(EnvCompletionTimeout, 60*time.Second),
		CompletionRetries:  getIntEnv(EnvCompletionRetries, 0),
		OpenAIAPIKey:       getEnv(EnvOpenAIAPIKey, ""),
		OpenAIBaseURL:      getEnv(EnvOpenAIBaseURL, ""),
		GeminiAPIKey:       getEnv(EnvGeminiAPIKey, ""),

		MaxHistoryTurns: getIntEnv(EnvMaxHistoryTurns, 0),

		RetrievalEnabled: getBoolEnv(EnvRetrievalEnabled, false),
		RetrievalTopK:    getIntEnv(EnvRetrievalTopK, 2),
		EmbeddingAPIKey:  getEnv(EnvEmbeddingAPIKey, ""),

		ChatRateBurst:  getFloatEnv(EnvChatRateBurst, 10),
		ChatRateRefill: getFloatEnv(EnvChatRateRefill, 0.5),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterstackToken:    getEnv(EnvBetterstackToken, ""),
		BetterstackEndpoint: getEnv(EnvBetterstackEndpoint, ""),

		Routing: loadRoutingConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.FAQPath == "" {
		errs = append(errs, errors.New(EnvFAQPath+" is required"))
	}
	if c.CoursesPath == "" {
		errs = append(errs, errors.New(EnvCoursesPath+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.CompletionProvider != ProviderOpenAI && c.CompletionProvider != ProviderGemini {
		errs = append(errs, fmt.Errorf("unknown completion provider %q", c.CompletionProvider))
	}
	if c.CompletionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("completion timeout must be positive, got %v", c.CompletionTimeout))
	}
	if c.CompletionRetries < 0 {
		errs = append(errs, fmt.Errorf("completion retries cannot be negative, got %d", c.CompletionRetries))
	}
	if c.MaxHistoryTurns < 0 {
		errs = append(errs, fmt.Errorf("max history turns cannot be negative, got %d", c.MaxHistoryTurns))
	}
	if c.RetrievalTopK < 1 {
		errs = append(errs, fmt.Errorf("retrieval top-k must be at least 1, got %d", c.RetrievalTopK))
	}
	if c.ChatRateBurst > 0 && c.ChatRateRefill <= 0 {
		errs = append(errs, fmt.Errorf("chat rate refill must be positive when rate limiting is enabled, got %v", c.ChatRateRefill))
	}
	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, errors.New(EnvSentryDSN+" is required when Sentry is enabled"))
	}
	if err := c.Routing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("routing config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasCompletionProvider returns true if the configured provider has an API key.
func (c *Config) HasCompletionProvider() bool {
	switch c.CompletionProvider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	default:
		return c.OpenAIAPIKey != ""
	}
}

// SQLitePath returns the full path to the SQLite transcript database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "transcripts.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
