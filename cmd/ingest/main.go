// Package main implements the one-shot ingest CLI. It extracts text
// from local files and runs the ingest pipeline directly, bypassing the
// queue. Useful for seeding a fresh deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LexGuardAI/lexguard-mvp/engine/catalog"
	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
	"github.com/LexGuardAI/lexguard-mvp/engine/extract"
	"github.com/LexGuardAI/lexguard-mvp/engine/ingest"
	"github.com/LexGuardAI/lexguard-mvp/engine/semantic"
	"github.com/LexGuardAI/lexguard-mvp/pkg/config"
	"github.com/LexGuardAI/lexguard-mvp/pkg/gemini"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("dir", "", "directory of documents to ingest")
	file := flag.String("file", "", "single document to ingest")
	category := flag.String("category", "", "category stored with every document")
	flag.Parse()

	if *dir == "" && *file == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -dir <path> | -file <path> [-category <name>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, *dir, *file, *category, logger); err != nil {
		logger.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, dir, file, category string, logger *slog.Logger) error {
	ctx := context.Background()

	llm := gemini.New(gemini.Opts{
		BaseURL:    cfg.Gemini.BaseURL,
		APIKey:     cfg.Gemini.APIKey,
		EmbedModel: cfg.Gemini.EmbedModel,
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

	deps := ingest.Deps{
		Embedder: llm,
		Store:    store,
		Catalog:  docs,
		Logger:   logger,
	}

	paths, err := collectPaths(dir, file)
	if err != nil {
		return err
	}

	var failed int
	for _, path := range paths {
		if err := ingestFile(ctx, deps, docs, path, category, logger); err != nil {
			logger.Error("document failed", "path", path, "err", err)
			failed++
		}
	}
	logger.Info("ingest finished", "total", len(paths), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

func collectPaths(dir, file string) ([]string, error) {
	if file != "" {
		return []string{file}, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".docx", ".txt", ".md":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}

func ingestFile(ctx context.Context, deps ingest.Deps, docs *catalog.Store, path, category string, logger *slog.Logger) error {
	name := filepath.Base(path)

	exists, err := docs.Exists(ctx, name)
	if err != nil {
		logger.Warn("dedup check failed", "doc_id", name, "err", err)
	} else if exists {
		logger.Info("skipping duplicate", "doc_id", name)
		return nil
	}

	text, err := extract.FromFile(path)
	if err != nil {
		return err
	}

	doc := domain.Document{
		ID:       name,
		Name:     name,
		Text:     extract.CollapseWhitespace(text),
		Category: category,
	}
	id, err := ingest.Run(ctx, deps, doc)
	if err != nil {
		return err
	}
	logger.Info("document ingested", "doc_id", id)
	return nil
}
