package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.RetrievalEngine = (*Engine)(nil)

// Engine orchestrates retrieval over the search backend and the
// embedding service. It routes queries to the right retrieval mode,
// fills in missing embeddings on write, and leaves a transcript of
// every exchange when a transcript store is attached.
type Engine struct {
	store       driven.VectorStore
	searcher    driven.HybridSearcher
	lifecycle   driven.IndexLifecycle
	provisioner driven.IndexProvisioner
	embedder    driven.EmbeddingService
	transcripts driven.TranscriptStore
}

// NewEngine creates a retrieval engine over the given adapters.
func NewEngine(
	store driven.VectorStore,
	searcher driven.HybridSearcher,
	lifecycle driven.IndexLifecycle,
	provisioner driven.IndexProvisioner,
	embedder driven.EmbeddingService,
) *Engine {
	return &Engine{
		store:       store,
		searcher:    searcher,
		lifecycle:   lifecycle,
		provisioner: provisioner,
		embedder:    embedder,
	}
}

// SetTranscriptStore attaches the optional transcript store.
func (e *Engine) SetTranscriptStore(store driven.TranscriptStore) {
	e.transcripts = store
}

// EnsureIndex brings the backing index to a usable state.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	return e.provisioner.EnsureIndex(ctx)
}

// Add persists the chunks. Chunks without an embedding get one from the
// embedding service, as do chunks whose embedding length disagrees with
// the model: a vector of the wrong size cannot have come from the
// configured model, so it is replaced rather than trusted.
func (e *Engine) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}
	chunks = append([]domain.Chunk(nil), chunks...)

	want := e.embedder.Dimensions()
	var pending []int
	for i, chunk := range chunks {
		if !chunk.Indexable() {
			continue
		}
		switch {
		case len(chunk.Embedding) == 0:
			pending = append(pending, i)
		case want > 0 && len(chunk.Embedding) != want:
			logger.Warn("chunk %q carries a %d-dimensional embedding, model %q produces %d; re-embedding",
				chunk.ID, len(chunk.Embedding), e.embedder.ModelName(), want)
			pending = append(pending, i)
		}
	}

	if len(pending) > 0 {
		texts := make([]string, len(pending))
		for n, i := range pending {
			texts[n] = chunks[i].Text
		}

		embeddings, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed %d chunk(s): %w", len(pending), err)
		}
		if len(embeddings) != len(pending) {
			return nil, fmt.Errorf("embedding service returned %d vector(s) for %d text(s)",
				len(embeddings), len(pending))
		}
		for n, i := range pending {
			chunks[i].Embedding = embeddings[n]
		}
		logger.Debug("embedded %d chunk(s) with %q", len(pending), e.embedder.ModelName())
	}

	return e.store.Add(ctx, chunks)
}

// Query retrieves the most relevant chunks. A query that carries its
// own embedding goes straight to the vector store; plain text goes
// through hybrid retrieval. Failures never surface as errors, only as
// a degraded (possibly empty) result.
func (e *Engine) Query(ctx context.Context, query domain.Query) domain.RetrievalResult {
	q := query.Normalised()

	var result domain.RetrievalResult
	switch {
	case len(q.Embedding) > 0:
		result = e.store.Query(ctx, q)
	case q.Text == "":
		logger.Debug("empty query, returning no results")
		return domain.RetrievalResult{}
	default:
		result = e.searcher.Retrieve(ctx, q.Text, q.TopK)
	}

	e.record(ctx, q, result)
	return result
}

// DeleteBySource removes every chunk from the named source.
func (e *Engine) DeleteBySource(ctx context.Context, source string) (int64, error) {
	return e.lifecycle.DeleteBySource(ctx, source)
}

// ClearAll removes every chunk in the index.
func (e *Engine) ClearAll(ctx context.Context) (int64, error) {
	return e.lifecycle.ClearAll(ctx)
}

// State reports the index's provisioning state.
func (e *Engine) State() domain.ProvisionState {
	return e.provisioner.State()
}

// Ping verifies the search backend and the embedding service are
// reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("search backend: %w", err)
	}
	if err := e.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	return nil
}

// record appends the exchange to the transcript, best-effort. Losing a
// transcript entry never fails the query that produced it.
func (e *Engine) record(ctx context.Context, query domain.Query, result domain.RetrievalResult) {
	if e.transcripts == nil {
		return
	}

	exchange := domain.Exchange{
		ID:        uuid.NewString(),
		Query:     query.Text,
		ChunkIDs:  result.IDs(),
		Degraded:  result.Degraded,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.transcripts.Append(ctx, exchange); err != nil {
		logger.Warn("record exchange: %v", err)
	}
}
