package elastic

import (
	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// fieldNames carries the configured index field names shared by the
// Store and the Retriever.
type fieldNames struct {
	text     string
	vector   string
	metadata string
}

// newFieldNames extracts the field names from the configuration.
func newFieldNames(cfg Config) fieldNames {
	return fieldNames{
		text:     cfg.TextField,
		vector:   cfg.VectorField,
		metadata: cfg.MetadataField,
	}
}

// document renders a chunk as an index document.
func (f fieldNames) document(chunk domain.Chunk) map[string]any {
	metadata := chunk.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		f.text:     chunk.Text,
		f.vector:   chunk.Embedding,
		f.metadata: metadata,
	}
}

// toChunk rebuilds a chunk from a document source.
func (f fieldNames) toChunk(id string, source map[string]any) domain.Chunk {
	chunk := domain.Chunk{ID: id}
	if text, ok := source[f.text].(string); ok {
		chunk.Text = text
	}
	chunk.Embedding = floatSlice(source[f.vector])
	if metadata, ok := source[f.metadata].(map[string]any); ok {
		chunk.Metadata = metadata
	}
	return chunk
}

// toResult maps a search response onto the domain result, preserving
// the backend's ranking.
func (f fieldNames) toResult(resp *searchResponse, degraded bool) domain.RetrievalResult {
	chunks := make([]domain.ScoredChunk, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		chunks = append(chunks, domain.ScoredChunk{
			Chunk: f.toChunk(hit.ID, hit.Source),
			Score: hit.Score,
		})
	}
	return domain.RetrievalResult{Chunks: chunks, Degraded: degraded}
}

// knnClause builds the ANN part of a search request.
func (f fieldNames) knnClause(embedding []float32, k int) map[string]any {
	return map[string]any{
		"field":          f.vector,
		"query_vector":   embedding,
		"k":              k,
		"num_candidates": candidatePool(k),
	}
}

// candidatePool scales k into the ANN candidate count, clamped to the
// backend's ceiling.
func candidatePool(k int) int {
	candidates := k * candidateMultiplier
	if candidates > maxCandidates {
		candidates = maxCandidates
	}
	return candidates
}

// floatSlice converts a decoded JSON array into a float32 vector.
func floatSlice(v any) []float32 {
	values, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(values))
	for _, raw := range values {
		f, ok := raw.(float64)
		if !ok {
			return nil
		}
		out = append(out, float32(f))
	}
	return out
}
