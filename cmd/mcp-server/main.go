// Package main provides the careerbase MCP server entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mike-a-ellis/careerbase/internal/assistant"
	"github.com/mike-a-ellis/careerbase/internal/chunker"
	"github.com/mike-a-ellis/careerbase/internal/config"
	"github.com/mike-a-ellis/careerbase/internal/embedding"
	"github.com/mike-a-ellis/careerbase/internal/index"
	"github.com/mike-a-ellis/careerbase/internal/kb"
	mcpserver "github.com/mike-a-ellis/careerbase/internal/mcp"
	"github.com/mike-a-ellis/careerbase/internal/retrieval"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}

	var idx index.Index
	var healthChecker mcpserver.HealthChecker
	if cfg.IndexConfigured() {
		idx, err = buildIndex(cfg, embedder.Dimension())
		if err != nil {
			log.Fatalf("failed to connect to index: %v", err)
		}
		healthChecker = idx
	} else {
		logger.Warn("index not configured, knowledge base writes will be skipped",
			"backend", cfg.IndexBackend)
	}

	if q, ok := idx.(*index.Qdrant); ok {
		defer q.Close()
		if err := q.EnsureCollection(ctx); err != nil {
			log.Fatalf("failed to ensure collection: %v", err)
		}
	}

	chunk, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunk window: %v", err)
	}

	repo := kb.NewRepository(chunk, embedder, idx, logger)
	retriever := retrieval.NewService(embedder, idx, logger)

	// The assistant tools need a Gemini key for generation even when the
	// embedder is OpenAI. Without one the server still exposes the
	// knowledge-base tools.
	var gen *assistant.Client
	if cfg.GeminiAPIKey != "" {
		gen, err = assistant.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("failed to create assistant client: %v", err)
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant tools disabled")
	}

	server := mcpserver.NewServer(&mcpserver.Config{
		Repository: repo,
		Retriever:  retriever,
		Assistant:  gen,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(healthChecker))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))
	mux.HandleFunc("/", mcpserver.NewLandingHandler())

	port := getEnv("PORT", "8080")
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode keeps the health endpoint up in the background for
		// local testing.
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting careerbase MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedder {
	case config.EmbedderOpenAI:
		return embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, 0)
	default:
		return embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey)
	}
}

func buildIndex(cfg *config.Config, dimension int) (index.Index, error) {
	switch cfg.IndexBackend {
	case config.IndexQdrant:
		return index.NewQdrant(cfg.QdrantHost, cfg.QdrantPort, dimension)
	case config.IndexMemory:
		return index.NewMemory(), nil
	default:
		return index.NewPinecone(cfg.PineconeIndexURL, cfg.PineconeAPIKey)
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
