package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finrag/finrag/internal/auth"
	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/embedder"
	"github.com/finrag/finrag/internal/generator"
	"github.com/finrag/finrag/internal/llm"
	"github.com/finrag/finrag/internal/pipeline"
	"github.com/finrag/finrag/internal/rerank"
	"github.com/finrag/finrag/internal/server"
	"github.com/finrag/finrag/internal/vectorstore"
)

func main() {
	// Set up structured logging
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("starting finrag service",
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
	)

	// Initialize Ollama embedder
	embed := embedder.NewOllamaEmbedder(embedder.OllamaConfig{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaEmbeddingModel,
	})
	slog.Info("initialized Ollama embedder", "model", cfg.OllamaEmbeddingModel)

	// Initialize Qdrant retriever
	retriever, err := vectorstore.NewQdrantRetriever(ctx, cfg.QdrantGRPCURL, cfg.QdrantCollection, embed, cfg.MinScore)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer retriever.Close()
	slog.Info("connected to Qdrant", "collection", cfg.QdrantCollection)

	// Initialize Ollama LLM and the generation boundary
	llmClient := llm.NewOllamaClient(
		llm.WithBaseURL(cfg.OllamaURL),
		llm.WithModel(cfg.OllamaLLMModel),
	)
	gen := generator.NewLLMGenerator(llmClient, cfg.OllamaLLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens, slog.Default())
	slog.Info("initialized Ollama LLM", "model", cfg.OllamaLLMModel)

	// Build the query pipeline
	pipe := pipeline.New(retriever, rerank.NewHeuristic(), gen, pipeline.Options{
		TopKRetrieval: cfg.TopKRetrieval,
		TopKFinal:     cfg.TopKFinal,
		EnableCache:   cfg.EnableCache,
		CacheTTL:      cfg.CacheTTL,
		CacheMaxSize:  cfg.CacheMaxSize,
	}, slog.Default())

	// Optional JWT auth
	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
		jwtCfg.Expiry = cfg.JWTExpiry
		jwtManager = auth.NewJWTManager(jwtCfg)
	}

	// Create HTTP server
	httpServer := server.NewHTTPServer(server.HTTPServerConfig{
		Port:           cfg.HTTPPort,
		Logger:         slog.Default(),
		AllowedOrigins: []string{"*"}, // Configure in production
		APIKey:         cfg.APIKey,
		JWTManager:     jwtManager,
	}, pipe)

	// Start server
	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting HTTP server", "port", cfg.HTTPPort)
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// Ensure interfaces are satisfied at compile time
var (
	_ vectorstore.Retriever = (*vectorstore.QdrantRetriever)(nil)
	_ embedder.Embedder     = (*embedder.OllamaEmbedder)(nil)
	_ llm.LLM               = (*llm.OllamaClient)(nil)
	_ generator.Generator   = (*generator.LLMGenerator)(nil)
	_ rerank.Reranker       = (*rerank.Heuristic)(nil)
	_ server.Querier        = (*pipeline.Pipeline)(nil)
)
