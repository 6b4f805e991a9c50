package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question to retrieve relevant chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`

	// Degraded is true when a fallback path produced the result; an
	// empty degraded result means "backend trouble", not "no matches".
	Degraded bool `json:"degraded"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`
}

// PurgeSourceInput is the input schema for the purge_source tool.
type PurgeSourceInput struct {
	Source string `json:"source" jsonschema:"the source identifier whose chunks should be deleted"`
}

// PurgeSourceOutput is the output schema for the purge_source tool.
type PurgeSourceOutput struct {
	Deleted int64 `json:"deleted"`

	// Partial is true when a sustained write conflict stopped the
	// operation before every matching chunk was removed.
	Partial bool `json:"partial"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the indexed chunks most relevant to a question",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "purge_source",
		Description: "Delete every indexed chunk originating from a source document",
	}, s.handlePurgeSource)
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.Query == "" {
		return nil, RetrieveOutput{}, fmt.Errorf("query must not be empty")
	}

	result := s.ports.Engine.Query(ctx, domain.Query{
		Text: input.Query,
		TopK: input.TopK,
	})

	output := RetrieveOutput{
		Chunks:   make([]ChunkOutput, len(result.Chunks)),
		Count:    len(result.Chunks),
		Degraded: result.Degraded,
	}
	for i, sc := range result.Chunks {
		output.Chunks[i] = ChunkOutput{
			ID:     sc.Chunk.ID,
			Text:   sc.Chunk.Text,
			Score:  sc.Score,
			Source: sc.Chunk.Source(),
		}
	}

	return nil, output, nil
}

// handlePurgeSource handles the purge_source tool invocation.
func (s *Server) handlePurgeSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PurgeSourceInput,
) (*mcp.CallToolResult, PurgeSourceOutput, error) {
	if input.Source == "" {
		return nil, PurgeSourceOutput{}, fmt.Errorf("source must not be empty")
	}

	deleted, err := s.ports.Engine.DeleteBySource(ctx, input.Source)
	if err != nil {
		// A sustained conflict still deleted chunks; report the partial
		// count instead of failing the tool call.
		if errors.Is(err, domain.ErrWriteConflict) {
			return nil, PurgeSourceOutput{Deleted: deleted, Partial: true}, nil
		}
		return nil, PurgeSourceOutput{}, err
	}

	return nil, PurgeSourceOutput{Deleted: deleted}, nil
}
