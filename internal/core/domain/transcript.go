package domain

import "time"

// Exchange records a single retrieval interaction: the question asked
// and the chunks the engine returned for it. Exchanges are appended
// best-effort; losing one never fails the query that produced it.
type Exchange struct {
	// ID is the unique identifier for the exchange.
	ID string

	// Query is the question text as the caller supplied it.
	Query string

	// ChunkIDs are the ids of the returned chunks, in rank order.
	ChunkIDs []string

	// Degraded mirrors the RetrievalResult's degradation flag.
	Degraded bool

	// CreatedAt is when the exchange happened.
	CreatedAt time.Time
}
