package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort string

	// Persistent stores
	DBPath        string
	VectorBackend string // "local" or "qdrant"
	VectorDataDir string // local backend snapshot directory
	QdrantURL     string

	// Embeddings
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingDims    int

	// Chat models
	DefaultProvider string
	DefaultModel    string
	LLMTimeout      time.Duration

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	DefaultNumContext int
	DefaultNumResults int

	// Logging
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory it is loaded first;
// environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:          getEnv("API_PORT", "8008"),
		DBPath:           getEnv("DB_PATH", "./data/docchat.db"),
		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", "local")),
		VectorDataDir:    getEnv("VECTOR_DATA_DIR", "./data/vector_db"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		DefaultProvider:  getEnv("DEFAULT_PROVIDER", "openai"),
		DefaultModel:     getEnv("DEFAULT_MODEL", "gpt-4o-mini"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var err error
	cfg.EmbeddingDims, err = getEnvInt("EMBEDDING_DIMS", 1536)
	if err != nil {
		return nil, err
	}
	if cfg.EmbeddingDims <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMS must be greater than 0")
	}

	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}

	cfg.DefaultNumContext, err = getEnvInt("NUM_CONTEXT", 3)
	if err != nil {
		return nil, err
	}
	cfg.DefaultNumResults, err = getEnvInt("NUM_RESULTS", 5)
	if err != nil {
		return nil, err
	}

	timeoutSecs, err := getEnvInt("LLM_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.LLMTimeout = time.Duration(timeoutSecs) * time.Second

	switch cfg.VectorBackend {
	case "local", "qdrant":
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"local\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Create data directories up front so store constructors can assume they exist.
	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.VectorDataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
