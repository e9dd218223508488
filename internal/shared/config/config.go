package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// AI provider
	OpenAIAPIKey string
	OpenAIModel  string
	MaxTokens    int
	Temperature  float32
	AITimeout    time.Duration

	// Rate Limiting
	DefaultRateLimit int

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Optional pricing override file (YAML)
	PricingFile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		MaxTokens:        getEnvInt("MAX_TOKENS", 2000),
		Temperature:      getEnvFloat32("TEMPERATURE", 0.7),
		AITimeout:        time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
		DefaultRateLimit: getEnvInt("DEFAULT_RATE_LIMIT", 100),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 25)) * 1024 * 1024,
		PricingFile:      getEnv("PRICING_FILE", ""),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("TEMPERATURE must be between 0.0 and 2.0")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}
