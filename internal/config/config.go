// Package config loads configuration from environment variables and .env files.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the finrag service
type Config struct {
	// Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Auth (both optional; leaving a value empty disables that scheme)
	APIKey    string        `env:"API_KEY"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// Qdrant
	QdrantGRPCURL    string `env:"QDRANT_GRPC_URL" envDefault:"localhost:6334"`
	QdrantCollection string `env:"QDRANT_COLLECTION" envDefault:"financial_report"`

	// Ollama
	OllamaURL            string  `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaEmbeddingModel string  `env:"OLLAMA_EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	OllamaLLMModel       string  `env:"OLLAMA_LLM_MODEL" envDefault:"llama3.2"`
	LLMTemperature       float64 `env:"LLM_TEMPERATURE" envDefault:"0.1"`
	LLMMaxTokens         int     `env:"LLM_MAX_TOKENS" envDefault:"600"`

	// Retrieval / rerank
	TopKRetrieval int     `env:"TOP_K_RETRIEVAL" envDefault:"10"`
	TopKFinal     int     `env:"TOP_K_FINAL" envDefault:"5"`
	MinScore      float32 `env:"MIN_SCORE" envDefault:"0"`

	// Response cache
	EnableCache  bool          `env:"ENABLE_CACHE" envDefault:"true"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"CACHE_MAX_SIZE" envDefault:"500"`
}

// Load loads configuration from .env file (if present) and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
