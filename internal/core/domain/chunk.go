package domain

// Metadata keys the index schema knows about. Ingestion callers may attach
// additional keys; only these are guaranteed to be mapped as typed fields.
const (
	// MetaSource identifies the originating document (path, URL, etc).
	MetaSource = "source"

	// MetaPage is the page number within the originating document.
	MetaPage = "page"

	// MetaChunkID is the ordinal position of the chunk within its document.
	MetaChunkID = "chunk_id"

	// MetaTimestamp is when the chunk was produced by the ingestion caller.
	MetaTimestamp = "timestamp"

	// MetaFileType is the originating document's format (pdf, md, txt, ...).
	MetaFileType = "file_type"

	// MetaFileSize is the originating document's size in bytes.
	MetaFileSize = "file_size"
)

// Chunk represents an embedded fragment of a source document.
// It is the unit of storage and retrieval; the search index is the
// single source of truth for persisted chunks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	// Synthesized at insertion when empty.
	ID string

	// Text is the UTF-8 content of this chunk.
	// Must be non-empty for the chunk to be indexable.
	Text string

	// Embedding is the vector representation for semantic search.
	// Its length must equal the live index's configured dimension.
	Embedding []float32

	// Metadata contains chunk provenance (source, page, file_type, ...).
	Metadata map[string]any
}

// Source returns the chunk's source metadata value, or "" when unset.
func (c Chunk) Source() string {
	if c.Metadata == nil {
		return ""
	}
	if s, ok := c.Metadata[MetaSource].(string); ok {
		return s
	}
	return ""
}

// Indexable returns true if the chunk carries text worth indexing.
func (c Chunk) Indexable() bool {
	return c.Text != ""
}

// ScoredChunk is a chunk paired with its relevance score.
type ScoredChunk struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// Score is the backend's fused relevance score.
	// Comparable only within a single result set.
	Score float64
}
