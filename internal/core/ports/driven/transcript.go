package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// TranscriptStore persists retrieval exchanges.
// This is an optional service - when nil, queries leave no transcript.
type TranscriptStore interface {
	// Append records an exchange.
	Append(ctx context.Context, exchange domain.Exchange) error

	// Recent returns up to limit exchanges, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Exchange, error)

	// PurgeOlderThan deletes exchanges created before the cutoff and
	// returns how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of stored exchanges.
	Count(ctx context.Context) (int64, error)

	// Close releases resources.
	Close() error
}
