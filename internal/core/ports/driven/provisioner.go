package driven

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// IndexProvisioner owns the lifecycle of one logical index: creation on
// first use, dimension validation against the embedding model, and
// additive mapping evolution.
//
// A provisioner instance is the exclusive owner of its index name.
// EnsureIndex is expected to run once at system start; it is idempotent
// on a live, compatible index.
type IndexProvisioner interface {
	// EnsureIndex brings the index to a usable state. It creates the
	// index when absent, verifies the vector dimension when present,
	// and applies additive mapping updates for fields the current
	// schema has gained. A dimension conflict on a live index is
	// terminal: the error wraps domain.ErrDimensionConflict and the
	// state remains ProvisionDimensionConflict until manual reindexing.
	EnsureIndex(ctx context.Context) error

	// State reports the index's current lifecycle state.
	State() domain.ProvisionState
}
