package config

import (
	"os"
	"strconv"

	"github.com/dentlink/backend/internal/feed"
)

// Config holds server configuration loaded from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	JWTSecret string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AWSRegion  string
	AWSBucket  string
	CDNBaseURL string

	// Empty disables Elasticsearch; search falls back to SQL
	ElasticsearchURL string

	OTLPEndpoint   string
	TracingEnabled bool

	// Feed score weights are tuning constants, not fixed law; override with
	// FEED_SAVE_WEIGHT and FEED_REPLY_WEIGHT.
	FeedWeights feed.ScoreWeights
}

// Load reads configuration from environment variables with sane defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "dentlink.log"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
		AWSBucket:  os.Getenv("AWS_BUCKET"),
		CDNBaseURL: os.Getenv("CDN_BASE_URL"),

		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),

		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4318"),
		TracingEnabled: getEnv("TRACING_ENABLED", "false") == "true",

		FeedWeights: feed.ScoreWeights{
			SaveWeight:  getEnvInt("FEED_SAVE_WEIGHT", feed.DefaultScoreWeights.SaveWeight),
			ReplyWeight: getEnvInt("FEED_REPLY_WEIGHT", feed.DefaultScoreWeights.ReplyWeight),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
