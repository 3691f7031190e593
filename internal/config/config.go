// Package config provides environment configuration for the service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// LLM settings
	GenerationProvider string // anthropic | openai | groq
	GenerationModel    string
	AnthropicAPIKey    string
	OpenAIAPIKey       string
	GroqAPIKey         string

	// Intent classification
	IntentModel       string
	IntentTemperature float64

	// Embeddings
	EmbeddingModel string

	// Retrieval
	RetrievalTopK       int
	RerankTopK          int
	SimilarityThreshold float64
	RerankerEndpoint    string
	RerankerTimeout     time.Duration

	// Conversation
	ContextWindow int

	// Sessions
	SessionTimeout       time.Duration
	SessionSweepInterval time.Duration

	// NATS
	NATSURL string

	// JWT (auth disabled when secret is empty)
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from the environment, honoring a local .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		GenerationProvider: getEnv("GENERATION_PROVIDER", "openai"),
		GenerationModel:    getEnv("GENERATION_MODEL", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),

		IntentModel:       getEnv("INTENT_MODEL", "llama3-8b-8192"),
		IntentTemperature: getFloatEnv("INTENT_TEMPERATURE", 0.1),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", ""),

		RetrievalTopK:       getIntEnv("RETRIEVAL_TOP_K", 10),
		RerankTopK:          getIntEnv("RERANK_TOP_K", 5),
		SimilarityThreshold: getFloatEnv("SIMILARITY_THRESHOLD", 0.7),
		RerankerEndpoint:    getEnv("RERANKER_ENDPOINT", ""),
		RerankerTimeout:     getDurationEnv("RERANKER_TIMEOUT", 15*time.Second),

		ContextWindow: getIntEnv("CONTEXT_WINDOW", 3),

		SessionTimeout:       getDurationEnv("SESSION_TIMEOUT", time.Hour),
		SessionSweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", 5*time.Minute),

		NATSURL: getEnv("NATS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
