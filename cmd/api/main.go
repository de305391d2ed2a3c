// Package main implements the LexGuard API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LexGuardAI/lexguard-mvp/engine/catalog"
	"github.com/LexGuardAI/lexguard-mvp/engine/history"
	"github.com/LexGuardAI/lexguard-mvp/engine/ingest"
	"github.com/LexGuardAI/lexguard-mvp/engine/rag"
	"github.com/LexGuardAI/lexguard-mvp/engine/semantic"
	"github.com/LexGuardAI/lexguard-mvp/pkg/config"
	"github.com/LexGuardAI/lexguard-mvp/pkg/gemini"
	"github.com/LexGuardAI/lexguard-mvp/pkg/mid"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm := gemini.New(gemini.Opts{
		BaseURL:    cfg.Gemini.BaseURL,
		APIKey:     cfg.Gemini.APIKey,
		EmbedModel: cfg.Gemini.EmbedModel,
		GenModel:   cfg.Gemini.GenModel,
		RatePerSec: cfg.Gemini.RatePerSec,
	})

	store, err := semantic.New(cfg.Qdrant.URL, cfg.Qdrant.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx, gemini.EmbedDims); err != nil {
		return fmt.Errorf("qdrant collection: %w", err)
	}

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URL, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Pass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)
	docs := catalog.New(driver)

	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	sessions := history.New(history.WithMaxTurns(100))
	ragSvc := rag.New(llm, store, llm, sessions, rag.Options{
		TopK:    cfg.RAG.TopK,
		AskTopK: cfg.RAG.AskTopK,
	}, logger)

	api := &server{
		rag:      ragSvc,
		catalog:  docs,
		nc:       nc,
		pipeline: ingest.Deps{Embedder: llm, Store: store, Catalog: docs, Logger: logger},
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", api.handleHealth)
	mux.HandleFunc("POST /api/vulnerabilities", api.handleVulnerabilities)
	mux.HandleFunc("POST /api/email", api.handleEmail)
	mux.HandleFunc("POST /api/chat", api.handleChat)
	mux.HandleFunc("GET /api/chat/history", api.handleChatHistory)
	mux.HandleFunc("POST /api/ask", api.handleAsk)
	mux.HandleFunc("POST /api/review", api.handleReview)
	mux.HandleFunc("POST /api/documents", api.handleUploadDocument)
	mux.HandleFunc("GET /api/documents", api.handleListDocuments)

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("lexguard-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
