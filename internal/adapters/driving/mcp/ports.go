package mcp

import (
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// Ports aggregates the interfaces the MCP server depends on.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Engine provides retrieval and index lifecycle operations.
	Engine driving.RetrievalEngine

	// Schemas lists the available index templates. Optional.
	Schemas driven.SchemaStore

	// Transcripts exposes recent retrieval exchanges. Optional.
	Transcripts driven.TranscriptStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Engine == nil {
		return ErrMissingEngine
	}
	// Schemas and Transcripts only back resources; without them the
	// corresponding resources report empty content.
	return nil
}
