package semantic

// Record is a single vector to store: the chunk id, its embedding, and the
// payload the retrieval layer reads back (chunk text plus document
// metadata). Upserting a record with an existing id overwrites it.
type Record struct {
	ID      string
	Values  []float32
	Payload map[string]any // text, doc_id, category, chunk_index
}

// Match is a single similarity-search hit, in store ranking order.
type Match struct {
	ID         string            `json:"id"`
	Score      float32           `json:"score"`
	Text       string            `json:"text"`
	DocID      string            `json:"doc_id"`
	Category   string            `json:"category"`
	ChunkIndex int64             `json:"chunk_index"`
	Meta       map[string]string `json:"meta,omitempty"`
}
