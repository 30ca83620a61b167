package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/http"
	"docchat/internal/llm"
	"docchat/internal/pdf"
	"docchat/internal/service"
	"docchat/internal/storage"
	"docchat/internal/vectorstore"
)

// queryCacheSize bounds the in-memory LRU of query embeddings.
const queryCacheSize = 512

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

	documentRepo := storage.NewDocumentRepo(db)
	conversationRepo := storage.NewConversationRepo(db)

	// Select vector store backend
	var vectorStore vectorstore.Store
	switch cfg.VectorBackend {
	case "qdrant":
		vectorStore, err = vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.EmbeddingDims)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		slog.Info("Vector store ready", "backend", "qdrant", "url", cfg.QdrantURL)
	default:
		vectorStore, err = vectorstore.NewLocalStore(cfg.VectorDataDir, cfg.EmbeddingDims)
		if err != nil {
			log.Fatalf("Failed to open local vector store: %v", err)
		}
		slog.Info("Vector store ready", "backend", "local", "dir", cfg.VectorDataDir)
	}

	// Embedding client with an LRU over query embeddings
	embeddingsClient := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDims, cfg.LLMTimeout)
	embedder, err := llm.NewEmbedCache(embeddingsClient, cfg.EmbeddingModel, queryCacheSize)
	if err != nil {
		log.Fatalf("Failed to create embedding cache: %v", err)
	}

	// Chat model providers
	registry := llm.NewRegistry(cfg.LLMTimeout)

	// Ingestion pipeline pieces
	splitter, err := chunker.NewSplitter(chunker.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})
	if err != nil {
		log.Fatalf("Failed to create text splitter: %v", err)
	}
	extractor := pdf.NewExtractor()

	ingestService := service.NewIngestService(documentRepo, extractor, splitter, embedder, vectorStore)
	chatService := service.NewChatService(registry, embedder, vectorStore, documentRepo, conversationRepo,
		service.Defaults{
			Provider:   cfg.DefaultProvider,
			Model:      cfg.DefaultModel,
			NumContext: cfg.DefaultNumContext,
			NumResults: cfg.DefaultNumResults,
		})
	slog.Info("Services initialized", "default_provider", cfg.DefaultProvider, "default_model", cfg.DefaultModel)

	// Create router with dependencies
	deps := &http.Deps{
		ChatService:   chatService,
		IngestService: ingestService,
		DB:            db,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
