// Package catalog tracks ingested documents in Neo4j. One Document node
// per ingested file records what is searchable, so uploads can be
// deduplicated and listed without touching the vector store.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LexGuardAI/lexguard-mvp/pkg/repo"
)

// Entry is one cataloged document.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	Chunks     int       `json:"chunks"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Store is the document catalog.
type Store struct {
	entries *repo.Neo4jRepo[Entry, string]
}

// New creates a catalog backed by the given Neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{entries: newEntryRepo(driver)}
}

func newEntryRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[Entry, string] {
	return repo.NewNeo4jRepo[Entry, string](driver, "Document", entryToMap, entryFromRecord)
}

func entryToMap(e Entry) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"name":        e.Name,
		"category":    e.Category,
		"chunks":      int64(e.Chunks),
		"ingested_at": e.IngestedAt.UTC().Format(time.RFC3339),
	}
}

func entryFromRecord(rec *neo4j.Record) (Entry, error) {
	node, ok := rec.Values[0].(neo4j.Node)
	if !ok {
		return Entry{}, fmt.Errorf("catalog: record is not a node")
	}
	e := Entry{
		ID:       strProp(node, "id"),
		Name:     strProp(node, "name"),
		Category: strProp(node, "category"),
	}
	if n, ok := node.Props["chunks"].(int64); ok {
		e.Chunks = int(n)
	}
	if s := strProp(node, "ingested_at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Entry{}, fmt.Errorf("catalog: parse ingested_at: %w", err)
		}
		e.IngestedAt = t
	}
	return e, nil
}

func strProp(node neo4j.Node, key string) string {
	s, _ := node.Props[key].(string)
	return s
}

// Save upserts the entry.
func (s *Store) Save(ctx context.Context, e Entry) error {
	if _, err := s.entries.Save(ctx, e); err != nil {
		return fmt.Errorf("catalog: save %s: %w", e.ID, err)
	}
	return nil
}

// Get returns one entry by document id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	return s.entries.Get(ctx, id)
}

// Exists reports whether a document id is already cataloged.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	return s.entries.Exists(ctx, id)
}

// List returns cataloged documents in id order.
func (s *Store) List(ctx context.Context, offset, limit int) ([]Entry, error) {
	return s.entries.List(ctx, repo.ListOpts{Offset: offset, Limit: limit})
}

// Delete removes an entry. Vector points are cleaned up separately.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}
