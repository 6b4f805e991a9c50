package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
// Exchanges are kept in append order.
type TranscriptStore struct {
	mu        sync.RWMutex
	exchanges []domain.Exchange
}

// NewTranscriptStore creates a new in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{}
}

// Append records an exchange.
func (s *TranscriptStore) Append(_ context.Context, exchange domain.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, exchange)
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (s *TranscriptStore) Recent(_ context.Context, limit int) ([]domain.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.exchanges) {
		limit = len(s.exchanges)
	}

	recent := make([]domain.Exchange, 0, limit)
	for i := len(s.exchanges) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.exchanges[i])
	}
	return recent, nil
}

// PurgeOlderThan deletes exchanges created before the cutoff.
func (s *TranscriptStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.exchanges[:0]
	var purged int64
	for _, e := range s.exchanges {
		if e.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	s.exchanges = kept
	return purged, nil
}

// Count returns the number of stored exchanges.
func (s *TranscriptStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.exchanges)), nil
}

// Close releases resources (no-op for memory store).
func (s *TranscriptStore) Close() error {
	return nil
}
