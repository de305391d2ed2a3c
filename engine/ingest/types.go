package ingest

import (
	"github.com/LexGuardAI/lexguard-mvp/engine/chunk"
	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
)

// ChunkedDoc is a document split into embeddable chunks.
type ChunkedDoc struct {
	Doc    domain.Document
	Chunks []chunk.Chunk
}

// EmbeddedDoc carries one vector per chunk, index-aligned.
type EmbeddedDoc struct {
	ChunkedDoc
	Vectors [][]float32
}
