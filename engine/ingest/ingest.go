// Package ingest is the document ingestion pipeline: validation,
// chunking, embedding, and storage. A document either lands fully in
// the vector store or not at all; no chunk is written until every chunk
// has an embedding.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/LexGuardAI/lexguard-mvp/engine/catalog"
	"github.com/LexGuardAI/lexguard-mvp/engine/chunk"
	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
	"github.com/LexGuardAI/lexguard-mvp/engine/semantic"
	"github.com/LexGuardAI/lexguard-mvp/pkg/fn"
)

// DefaultWorkers bounds concurrent embedding calls per document.
const DefaultWorkers = 4

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Recorder writes chunk vectors to the vector store.
type Recorder interface {
	Upsert(ctx context.Context, records []semantic.Record) error
}

// Cataloger tracks ingested documents.
type Cataloger interface {
	Save(ctx context.Context, e catalog.Entry) error
	Exists(ctx context.Context, id string) (bool, error)
}

// Deps holds the external dependencies of the pipeline.
type Deps struct {
	Embedder Embedder
	Store    Recorder
	Catalog  Cataloger
	Workers  int
	Logger   *slog.Logger
}

// Validate rejects documents with empty text, id, or name.
var Validate fn.Stage[domain.Document, domain.Document] = func(_ context.Context, doc domain.Document) fn.Result[domain.Document] {
	if err := domain.ValidateDocument(doc); err != nil {
		return fn.Err[domain.Document](err)
	}
	return fn.Ok(doc)
}

// ChunkDoc splits the document text on headings and sentence boundaries.
var ChunkDoc fn.Stage[domain.Document, ChunkedDoc] = func(_ context.Context, doc domain.Document) fn.Result[ChunkedDoc] {
	chunks := chunk.Split(doc.Text)
	if len(chunks) == 0 {
		return fn.Errf[ChunkedDoc]("ingest: %s: no chunks produced: %w", doc.ID, domain.ErrUnsupportedInput)
	}
	return fn.Ok(ChunkedDoc{Doc: doc, Chunks: chunks})
}

// NewEmbed creates the embedding stage. Chunks are embedded concurrently
// and any single failure fails the whole document.
func NewEmbed(embedder Embedder, workers int) fn.Stage[ChunkedDoc, EmbeddedDoc] {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return func(ctx context.Context, doc ChunkedDoc) fn.Result[EmbeddedDoc] {
		results := fn.ParMapResult(doc.Chunks, workers, func(c chunk.Chunk) fn.Result[[]float32] {
			return fn.FromPair(embedder.Embed(ctx, c.Text))
		})
		vectors, err := fn.Collect(results).Unwrap()
		if err != nil {
			return fn.Errf[EmbeddedDoc]("ingest: embed %s: %w: %w", doc.Doc.ID, domain.ErrEmbedding, err)
		}
		return fn.Ok(EmbeddedDoc{ChunkedDoc: doc, Vectors: vectors})
	}
}

// NewStore creates the storage stage. All chunk vectors go to the vector
// store in one batch; the catalog entry is best-effort.
func NewStore(store Recorder, cat Cataloger, logger *slog.Logger) fn.Stage[EmbeddedDoc, string] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, doc EmbeddedDoc) fn.Result[string] {
		records := make([]semantic.Record, len(doc.Chunks))
		for i, c := range doc.Chunks {
			payload := map[string]any{
				"text":        c.Text,
				"doc_id":      doc.Doc.ID,
				"category":    doc.Doc.Category,
				"chunk_index": i,
			}
			for k, v := range doc.Doc.Metadata {
				payload[k] = v
			}
			records[i] = semantic.Record{ID: c.ID, Values: doc.Vectors[i], Payload: payload}
		}
		if err := store.Upsert(ctx, records); err != nil {
			return fn.Errf[string]("ingest: store %s: %w", doc.Doc.ID, err)
		}

		if cat != nil {
			entry := catalog.Entry{
				ID:         doc.Doc.ID,
				Name:       doc.Doc.Name,
				Category:   doc.Doc.Category,
				Chunks:     len(doc.Chunks),
				IngestedAt: time.Now().UTC(),
			}
			if err := cat.Save(ctx, entry); err != nil {
				logger.Warn("ingest: catalog save failed", "doc_id", doc.Doc.ID, "error", err)
			}
		}
		return fn.Ok(doc.Doc.ID)
	}
}

// NewPipeline wires the stages into one traced pipeline from document to
// stored document id.
func NewPipeline(deps Deps) fn.Stage[domain.Document, string] {
	embed := fn.TracedStage("ingest.embed", NewEmbed(deps.Embedder, deps.Workers))
	store := fn.TracedStage("ingest.store", NewStore(deps.Store, deps.Catalog, deps.Logger))

	return fn.Then(
		fn.Then(
			fn.TracedStage("ingest.validate", Validate),
			fn.TracedStage("ingest.chunk", ChunkDoc),
		),
		fn.Then(embed, store),
	)
}

// Run executes the pipeline for one document.
func Run(ctx context.Context, deps Deps, doc domain.Document) (string, error) {
	return NewPipeline(deps)(ctx, doc).Unwrap()
}
