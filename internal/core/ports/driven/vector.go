package driven

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// VectorStore persists chunks in the search backend and answers
// single-mode queries. The backend index is the single source of truth;
// implementations hold no authoritative in-process state.
type VectorStore interface {
	// Add writes the chunks and returns the ids of those that were
	// persisted. Chunks without an id get one synthesized; chunks with
	// empty text are skipped. Per-chunk write failures are logged, not
	// returned: a shorter id list is the partial-failure signal.
	Add(ctx context.Context, chunks []domain.Chunk) ([]string, error)

	// Delete removes a single chunk by id, best-effort. Failures are
	// logged and swallowed.
	Delete(ctx context.Context, id string)

	// Query runs a single-mode search: pure vector when the query
	// carries an embedding, lexical keyword search otherwise. Backend
	// errors collapse to an empty degraded result.
	Query(ctx context.Context, query domain.Query) domain.RetrievalResult

	// GetByID fetches chunks by id. Missing ids are silently skipped;
	// the returned slice preserves the order of the ids that were found.
	GetByID(ctx context.Context, ids []string) ([]domain.Chunk, error)

	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error
}

// HybridSearcher is the capability of answering a query with fused
// vector and keyword retrieval in a single backend round trip.
// Backends that cannot fuse server-side do not implement it.
type HybridSearcher interface {
	// Retrieve embeds the query text, runs the combined request, and
	// returns the backend's fused ranking. It never returns an error:
	// fusion failures fall back to vector-only search, and a failed
	// fallback yields an empty degraded result.
	Retrieve(ctx context.Context, text string, k int) domain.RetrievalResult
}

// IndexLifecycle provides bulk maintenance operations on the index.
type IndexLifecycle interface {
	// DeleteBySource removes every chunk whose source metadata matches.
	// Version conflicts are tolerated and retried once; a sustained
	// conflict returns the count deleted so far together with an error
	// wrapping domain.ErrWriteConflict.
	DeleteBySource(ctx context.Context, source string) (int64, error)

	// ClearAll removes every chunk in the index, falling back to id
	// enumeration with per-id deletes when bulk deletion keeps
	// conflicting.
	ClearAll(ctx context.Context) (int64, error)
}
