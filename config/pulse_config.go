package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// Neo4j
	Neo4jURL      string
	Neo4jUsername string
	Neo4jPassword string

	// JWT
	JWTSecret string
	DevUserID string

	// LLM
	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMModel        string
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMTimeoutSec   int

	// Sentiment
	SentimentCacheTTLMin int
	SentimentMaxBatch    int

	// Worker
	WorkerID        string
	WorkerMax       int
	WorkerBatchSize int

	// Consumer (Redis Stream)
	ConsumerBlockMS         int
	ConsumerCount           int
	ConsumerMaxRetries      int
	ConsumerPendingCheckSec int
	ConsumerPendingIdleSec  int

	// HTTP
	RateLimitPerMin int
	AllowedOrigins  []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "pulse"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Neo4j
		Neo4jURL:      getEnv("NEO4J_URL", ""),
		Neo4jUsername: getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),
		DevUserID: getEnv("DEV_USER_ID", ""),

		// LLM
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 512),
		LLMTemperature:  getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeoutSec:   getEnvInt("LLM_TIMEOUT_SEC", 20),

		// Sentiment
		SentimentCacheTTLMin: getEnvInt("SENTIMENT_CACHE_TTL_MIN", 60),
		SentimentMaxBatch:    getEnvInt("SENTIMENT_MAX_BATCH", 50),

		// Worker
		WorkerID:        getEnv("WORKER_ID", generateWorkerID()),
		WorkerMax:       getEnvInt("WORKER_MAX", 4),
		WorkerBatchSize: getEnvInt("WORKER_BATCH_SIZE", 1),

		// Consumer
		ConsumerBlockMS:         getEnvInt("CONSUMER_BLOCK_MS", 5000),
		ConsumerCount:           getEnvInt("CONSUMER_COUNT", 10),
		ConsumerMaxRetries:      getEnvInt("CONSUMER_MAX_RETRIES", 5),
		ConsumerPendingCheckSec: getEnvInt("CONSUMER_PENDING_CHECK_SEC", 30),
		ConsumerPendingIdleSec:  getEnvInt("CONSUMER_PENDING_IDLE_SEC", 60),

		// HTTP
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
		if cfg.IsDevelopment() {
			cfg.LogLevel = "debug"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("config: LLM_TEMPERATURE must be within [0,2], got %v", c.LLMTemperature)
	}
	if c.SentimentMaxBatch < 1 {
		return fmt.Errorf("config: SENTIMENT_MAX_BATCH must be positive, got %d", c.SentimentMaxBatch)
	}
	if c.WorkerMax < 1 {
		return fmt.Errorf("config: WORKER_MAX must be positive, got %d", c.WorkerMax)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	return nil
}

// LLMAPIKey returns the key for the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// LLMTimeout is the per-call deadline for remote classification.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// SentimentCacheTTL is zero when result caching is disabled.
func (c *Config) SentimentCacheTTL() time.Duration {
	return time.Duration(c.SentimentCacheTTLMin) * time.Minute
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-3-5-haiku-latest"
	}
	return "gpt-4o-mini"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
