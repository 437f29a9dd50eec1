package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"kaspabot/internal/arbiter"
	"kaspabot/internal/config"
	"kaspabot/internal/http"
	"kaspabot/internal/llm"
	"kaspabot/internal/retrieval"
	"kaspabot/internal/service"
	"kaspabot/internal/storage"
	"kaspabot/internal/vectorstore"
	"kaspabot/internal/websearch"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about the Kaspa blockchain by combining a
// locally indexed corpus with live web search.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: KaspaBot API
//   description: |
//     Question answering API for the Kaspa blockchain. Questions are answered
//     from an indexed document corpus fused with live web evidence, within
//     persistent multi-turn conversations.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	conversationRepo := storage.NewConversationRepo(db)

	ctx := context.Background()

	// Initialize the vector index
	var index vectorstore.Index
	switch cfg.VectorBackend {
	case "qdrant":
		qdrantIndex, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantIndex.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)
		index = qdrantIndex
	default:
		memoryIndex, err := vectorstore.LoadCorpus(cfg.CorpusPath)
		if err != nil {
			log.Fatalf("Failed to load corpus: %v", err)
		}
		count, _ := memoryIndex.Count(ctx)
		slog.Info("Corpus loaded", "path", cfg.CorpusPath, "chunks", count)
		index = memoryIndex
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize)

	rules, err := retrieval.LoadRules(cfg.RankingRulesPath)
	if err != nil {
		log.Fatalf("Failed to load ranking rules: %v", err)
	}
	localRetriever := retrieval.NewRetriever(embedder, index, rules)
	slog.Info("Local retriever initialized", "rules", len(rules))

	searchClient := websearch.NewClient(cfg.WebSearchBaseURL, cfg.WebSearchAPIKey, cfg.WebSearchModel)
	webRetriever := websearch.NewRetriever(searchClient)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	evidenceArbiter := arbiter.New(llmClient, cfg.GenerateTimeout)

	answerService := service.NewAnswerService(
		localRetriever,
		webRetriever,
		evidenceArbiter,
		conversationRepo,
		cfg.RetrieveK,
		cfg.MaxContextTurns,
		cfg.RetrieverTimeout,
	)
	slog.Info("Answer service initialized")

	deps := &http.Deps{
		AnswerService:     answerService,
		ConversationStore: conversationRepo,
		VectorIndex:       index,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
