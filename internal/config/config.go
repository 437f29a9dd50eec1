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
	// Generation service (chat completions).
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Embedding service.
	EmbeddingBaseURL string
	EmbeddingModel   string

	// Grounded web-search service.
	WebSearchBaseURL string
	WebSearchModel   string
	WebSearchAPIKey  string

	// Conversation store.
	DBPath string

	// Vector index. Backend is "memory" (in-process flat index loaded from
	// CorpusPath) or "qdrant" (remote).
	VectorBackend    string
	CorpusPath       string
	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int

	// Optional YAML file overriding the built-in ranking rules.
	RankingRulesPath string

	// Retrieval and prompting bounds.
	RetrieveK        int
	MaxContextTurns  int
	RetrieverTimeout time.Duration
	GenerateTimeout  time.Duration

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or an ancestor, it is
// loaded first; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up a few levels so the server can be started from subdirectories.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:       getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:        getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		WebSearchBaseURL: getEnv("WEB_SEARCH_BASE_URL", "https://generativelanguage.googleapis.com"),
		WebSearchModel:   getEnv("WEB_SEARCH_MODEL", "gemini-2.5-flash"),
		WebSearchAPIKey:  getEnv("WEB_SEARCH_API_KEY", ""),
		DBPath:           getEnv("DB_PATH", "./data/kaspabot.db"),
		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", "memory")),
		CorpusPath:       getEnv("CORPUS_PATH", "./data/corpus.json"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "kaspa"),
		RankingRulesPath: getEnv("RANKING_RULES_PATH", ""),
		APIPort:          getEnv("API_PORT", "9000"),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.RetrieveK, err = getIntEnv("RETRIEVE_K", 5); err != nil {
		return nil, err
	}
	if cfg.MaxContextTurns, err = getIntEnv("MAX_CONTEXT_TURNS", 10); err != nil {
		return nil, err
	}

	retrieverSecs, err := getIntEnv("RETRIEVER_TIMEOUT_SECS", 15)
	if err != nil {
		return nil, err
	}
	cfg.RetrieverTimeout = time.Duration(retrieverSecs) * time.Second

	generateSecs, err := getIntEnv("GENERATE_TIMEOUT_SECS", 30)
	if err != nil {
		return nil, err
	}
	cfg.GenerateTimeout = time.Duration(generateSecs) * time.Second

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

	switch cfg.VectorBackend {
	case "memory":
		if cfg.CorpusPath == "" {
			return nil, fmt.Errorf("CORPUS_PATH is required for the memory vector backend")
		}
	case "qdrant":
		// Vector size must match the embedding model output; there is no safe
		// default, so it is required for the remote backend.
		size, err := getIntEnv("QDRANT_VECTOR_SIZE", 0)
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required and must be greater than 0")
		}
		cfg.QdrantVectorSize = size
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"memory\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	if cfg.RetrieveK <= 0 {
		return nil, fmt.Errorf("RETRIEVE_K must be greater than 0")
	}
	if cfg.MaxContextTurns < 0 {
		return nil, fmt.Errorf("MAX_CONTEXT_TURNS must not be negative")
	}

	// Create the data directory for the conversation database if needed.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
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

// getIntEnv gets an integer environment variable or returns a default value.
func getIntEnv(key string, defaultValue int) (int, error) {
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
