package driving

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// RetrievalEngine is the surface external callers (CLI, HTTP API, MCP)
// use to work with the chunk index.
type RetrievalEngine interface {
	// EnsureIndex brings the backing index to a usable state.
	// Callers run it once at start-up.
	EnsureIndex(ctx context.Context) error

	// Add persists the chunks, computing embeddings for any that lack
	// one, and returns the ids of the chunks that were written.
	Add(ctx context.Context, chunks []domain.Chunk) ([]string, error)

	// Query retrieves the most relevant chunks. It never returns an
	// error: failures degrade to an empty result with Degraded set.
	Query(ctx context.Context, query domain.Query) domain.RetrievalResult

	// DeleteBySource removes every chunk from the named source and
	// returns how many were deleted.
	DeleteBySource(ctx context.Context, source string) (int64, error)

	// ClearAll removes every chunk in the index and returns how many
	// were deleted.
	ClearAll(ctx context.Context) (int64, error)

	// State reports the index's provisioning state.
	State() domain.ProvisionState

	// Ping verifies the search backend and embedding service are
	// reachable.
	Ping(ctx context.Context) error
}
