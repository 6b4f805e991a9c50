package domain

// DefaultTopK is the number of chunks returned when a query does not
// specify one.
const DefaultTopK = 5

// Query is a retrieval request.
// When Embedding is set the query runs as pure vector search; otherwise
// the text is embedded and hybrid retrieval is used.
type Query struct {
	// Text is the natural-language question.
	Text string

	// Embedding is an optional caller-supplied query vector.
	Embedding []float32

	// TopK is the maximum number of chunks to return.
	// Values < 1 fall back to DefaultTopK.
	TopK int
}

// Normalised returns a copy with TopK clamped to a usable value.
func (q Query) Normalised() Query {
	if q.TopK < 1 {
		q.TopK = DefaultTopK
	}
	return q
}

// RetrievalResult is the outcome of a retrieval operation.
//
// Retrieval never fails loudly: backend errors collapse to an empty
// result with Degraded set, so callers can distinguish "nothing matched"
// from "the backend fell over".
type RetrievalResult struct {
	// Chunks is ordered by descending fused score.
	Chunks []ScoredChunk

	// Degraded is true when a fallback path produced this result or a
	// backend failure was swallowed.
	Degraded bool
}

// Empty returns true if the result carries no chunks.
func (r RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}

// IDs returns the chunk ids in result order.
func (r RetrievalResult) IDs() []string {
	ids := make([]string, 0, len(r.Chunks))
	for _, sc := range r.Chunks {
		ids = append(ids, sc.Chunk.ID)
	}
	return ids
}
