package elastic

import (
	"context"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driven.HybridSearcher = (*Retriever)(nil)

// Relevance weights for the lexical half of the hybrid query. The
// backend fuses these with the ANN scores; no client-side recombination
// happens.
const (
	// lexicalBoost weights plain term matches.
	lexicalBoost = 1.2

	// phraseBoost weights exact phrase matches above term matches.
	phraseBoost = 1.5
)

// Retriever answers queries with fused vector and keyword retrieval in
// a single backend round trip. The backend's fused score is accepted as
// authoritative.
//
// Degradation ladder: a failed combined request falls back to pure
// vector search at the same k; a failed fallback yields an empty
// degraded result. Retrieve never returns an error.
type Retriever struct {
	client         *Client
	embedder       driven.EmbeddingService
	index          string
	fields         fieldNames
	requestTimeout time.Duration
}

// NewRetriever creates a hybrid retriever over the shared client.
func NewRetriever(client *Client, embedder driven.EmbeddingService, cfg Config) *Retriever {
	cfg = cfg.withDefaults()
	return &Retriever{
		client:         client,
		embedder:       embedder,
		index:          cfg.Index,
		fields:         newFieldNames(cfg),
		requestTimeout: cfg.RequestTimeout,
	}
}

// Retrieve embeds the query text and runs the combined request.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) domain.RetrievalResult {
	if k < 1 {
		k = domain.DefaultTopK
	}

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		// Without a query vector neither the combined request nor the
		// vector fallback can run; lexical search is what remains.
		logger.Warn("embed query: %v; degrading to keyword search", err)
		return r.lexicalOnly(ctx, text, k)
	}

	result, err := r.hybrid(ctx, text, embedding, k)
	if err == nil {
		logger.Debug("hybrid retrieval returned %d chunk(s)", len(result.Chunks))
		return result
	}
	logger.Warn("%v: %v; falling back to vector-only search", domain.ErrFusionFailed, err)

	result, err = r.vectorOnly(ctx, embedding, k)
	if err == nil {
		return result
	}
	logger.Error("vector-only fallback failed: %v", err)
	return domain.RetrievalResult{Degraded: true}
}

// hybrid runs the single combined knn + keyword request.
func (r *Retriever) hybrid(ctx context.Context, text string, embedding []float32, k int) (domain.RetrievalResult, error) {
	body := map[string]any{
		"size": k,
		"knn":  r.fields.knnClause(embedding, k),
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{
						"match": map[string]any{
							r.fields.text: map[string]any{
								"query": text,
								"boost": lexicalBoost,
							},
						},
					},
					map[string]any{
						"match_phrase": map[string]any{
							r.fields.text: map[string]any{
								"query": text,
								"boost": phraseBoost,
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}

	cctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	resp, err := r.client.Search(cctx, r.index, body)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	return r.fields.toResult(resp, false), nil
}

// vectorOnly runs the pure ANN fallback. Results it produces are
// flagged degraded.
func (r *Retriever) vectorOnly(ctx context.Context, embedding []float32, k int) (domain.RetrievalResult, error) {
	body := map[string]any{
		"size": k,
		"knn":  r.fields.knnClause(embedding, k),
	}

	cctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	resp, err := r.client.Search(cctx, r.index, body)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	return r.fields.toResult(resp, true), nil
}

// lexicalOnly is the last resort when the query cannot be embedded.
func (r *Retriever) lexicalOnly(ctx context.Context, text string, k int) domain.RetrievalResult {
	body := map[string]any{
		"size": k,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": []string{r.fields.text},
			},
		},
	}

	cctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	resp, err := r.client.Search(cctx, r.index, body)
	if err != nil {
		logger.Error("keyword fallback failed: %v", err)
		return domain.RetrievalResult{Degraded: true}
	}
	return r.fields.toResult(resp, true)
}
