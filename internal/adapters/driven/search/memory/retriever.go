package memory

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driven.HybridSearcher = (*Retriever)(nil)

// Relative weights of the two retrieval signals. Vector similarity
// dominates; keyword overlap breaks near-ties and rescues exact terms
// the embedding missed.
const (
	vectorWeight  = 0.7
	lexicalWeight = 0.3
)

// Retriever fuses vector and keyword scores over the in-memory store.
// Unlike the remote backend there is no second round trip to fall back
// to; only an embedding failure degrades the result.
type Retriever struct {
	store    *Store
	embedder driven.EmbeddingService
}

// NewRetriever creates a hybrid retriever over the store.
func NewRetriever(store *Store, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve embeds the query text and ranks chunks by the weighted sum
// of cosine similarity and keyword overlap.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) domain.RetrievalResult {
	if k < 1 {
		k = domain.DefaultTopK
	}

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("embed query: %v; degrading to keyword search", err)
		result := r.store.Query(ctx, domain.Query{Text: text, TopK: k})
		result.Degraded = true
		return result
	}

	terms := tokenise(text)
	scored := r.store.rank(k, func(c domain.Chunk) float64 {
		return vectorWeight*cosineSimilarity(embedding, c.Embedding) +
			lexicalWeight*lexicalScore(terms, c.Text)
	})
	return domain.RetrievalResult{Chunks: scored}
}
