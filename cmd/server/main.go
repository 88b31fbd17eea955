package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"clauselens/internal/analysis"
	"clauselens/internal/config"
	"clauselens/internal/embedding"
	"clauselens/internal/handler"
	"clauselens/internal/port"
	"clauselens/internal/provider/gemini"
	"clauselens/internal/provider/openai"
	"clauselens/internal/repository/postgres"
	"clauselens/internal/router"
	"clauselens/internal/segmenter"
	"clauselens/internal/service"
	"clauselens/internal/vectorstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	clauseRepo := postgres.NewClauseRepo(db)

	// Initialize reasoning providers from whatever is configured
	var providers []port.ReasoningProvider
	if cfg.Analysis.OpenAI.Configured() {
		providers = append(providers, openai.NewClient(&cfg.Analysis.OpenAI))
	}
	if cfg.Analysis.Gemini.Configured() {
		providers = append(providers, gemini.NewClient(&cfg.Analysis.Gemini))
	}
	if len(providers) == 0 {
		log.Printf("no reasoning providers configured; analysis will use heuristic fallback")
	}

	analyzer := analysis.NewAnalyzer(providers, analysis.Config{
		Preference:  cfg.Analysis.Preference,
		MaxAttempts: cfg.Analysis.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Analysis.BaseDelaySecs) * time.Second,
		MaxDelay:    time.Duration(cfg.Analysis.MaxDelaySecs) * time.Second,
	})

	seg := segmenter.New(segmenter.Config{
		MinClauseLen:   cfg.Segmenter.MinClauseLen,
		MergeThreshold: cfg.Segmenter.MergeThreshold,
		MaxClauses:     cfg.Segmenter.MaxClauses,
	})

	// Vector features are optional: both the embedder and the store must be
	// configured, otherwise analysis proceeds without them.
	var embedder port.EmbeddingProvider
	var vectors port.VectorStore
	if cfg.Embedding.Configured() && cfg.Qdrant.Configured() {
		embClient := embedding.NewClient(&cfg.Embedding)
		store, err := vectorstore.New(context.Background(), vectorstore.Config{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Collection: cfg.Qdrant.Collection,
			VectorSize: uint64(embClient.Dimension()),
		})
		if err != nil {
			log.Printf("vector store unavailable, continuing without it: %v", err)
		} else {
			defer store.Close()
			embedder = embClient
			vectors = store
		}
	}

	// Initialize services
	docSvc := service.NewDocumentService(docRepo, clauseRepo, seg, analyzer, embedder, vectors)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(docSvc)
	healthH := handler.NewHealthHandler(db, analyzer)

	// Setup router
	r := router.Setup(documentH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
