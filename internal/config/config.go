package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// LLMProvider selects the gateway: "mistral", "gemini", or "none"
	// to run entirely on the fallback generator.
	LLMProvider   string
	MistralAPIKey string
	GeminiAPIKey  string
	ModelName     string

	// RedisURL empty means sessions are held in process memory.
	RedisURL   string
	SessionTTL time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine; env vars may come from the environment.
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "none")),
		MistralAPIKey: os.Getenv("MISTRAL_API_KEY"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		ModelName:     getEnv("MODEL_NAME", ""),
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionTTL:    ttl,
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
