// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Server
	EnvPort            = "EDUBOT_PORT"
	EnvLogLevel        = "EDUBOT_LOG_LEVEL"
	EnvShutdownTimeout = "EDUBOT_SHUTDOWN_TIMEOUT"

	// Data sources
	EnvFAQPath     = "EDUBOT_FAQ_PATH"
	EnvCoursesPath = "EDUBOT_COURSES_PATH"
	EnvDataDir     = "EDUBOT_DATA_DIR"

	// Completion (LLM fallback)
	EnvCompletionProvider = "EDUBOT_COMPLETION_PROVIDER"
	EnvCompletionModel    = "EDUBOT_COMPLETION_MODEL"
	EnvCompletionTimeout  = "EDUBOT_COMPLETION_TIMEOUT"
	EnvCompletionRetries  = "EDUBOT_COMPLETION_RETRIES"
	EnvOpenAIAPIKey       = "EDUBOT_OPENAI_API_KEY"
	EnvOpenAIBaseURL      = "EDUBOT_OPENAI_BASE_URL"
	EnvGeminiAPIKey       = "EDUBOT_GEMINI_API_KEY"

	// Conversation memory
	EnvMaxHistoryTurns = "EDUBOT_MAX_HISTORY_TURNS"

	// Retrieval enhancement for the fallback stage
	EnvRetrievalEnabled = "EDUBOT_RETRIEVAL_ENABLED"
	EnvRetrievalTopK    = "EDUBOT_RETRIEVAL_TOP_K"
	EnvEmbeddingAPIKey  = "EDUBOT_EMBEDDING_API_KEY"

	// Routing keywords
	EnvListTriggers        = "EDUBOT_LIST_TRIGGERS"
	EnvDescriptionTriggers = "EDUBOT_DESCRIPTION_TRIGGERS"
	EnvPriceTriggers       = "EDUBOT_PRICE_TRIGGERS"
	EnvDurationTriggers    = "EDUBOT_DURATION_TRIGGERS"
	EnvMinTokenLength      = "EDUBOT_MIN_TOKEN_LENGTH"

	// Chat rate limiting
	EnvChatRateBurst  = "EDUBOT_CHAT_RATE_BURST"
	EnvChatRateRefill = "EDUBOT_CHAT_RATE_REFILL"

	// Metrics Auth
	EnvMetricsUsername = "EDUBOT_METRICS_USERNAME"
	EnvMetricsPassword = "EDUBOT_METRICS_PASSWORD"

	// Sentry
	EnvSentryEnabled     = "EDUBOT_SENTRY_ENABLED"
	EnvSentryDSN         = "EDUBOT_SENTRY_DSN"
	EnvSentryEnvironment = "EDUBOT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "EDUBOT_SENTRY_SAMPLE_RATE"

	// Better Stack
	EnvBetterstackToken    = "EDUBOT_BETTERSTACK_TOKEN"
	EnvBetterstackEndpoint = "EDUBOT_BETTERSTACK_ENDPOINT"
)
