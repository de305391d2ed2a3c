// Package main implements the ingestion worker. It consumes queued
// documents from NATS and runs them through the ingest pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LexGuardAI/lexguard-mvp/engine/catalog"
	"github.com/LexGuardAI/lexguard-mvp/engine/ingest"
	"github.com/LexGuardAI/lexguard-mvp/engine/semantic"
	"github.com/LexGuardAI/lexguard-mvp/pkg/config"
	"github.com/LexGuardAI/lexguard-mvp/pkg/gemini"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.yaml", "path to config file")
	workers := flag.Int("workers", ingest.DefaultWorkers, "concurrent embeds per document")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, *workers, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, workers int, logger *slog.Logger) error {
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

	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	sub, err := ingest.StartConsumer(nc, ingest.Deps{
		Embedder: llm,
		Store:    store,
		Catalog:  catalog.New(driver),
		Workers:  workers,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer sub.Unsubscribe()

	logger.Info("ingest worker started", "subject", ingest.Subject, "workers", workers)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
