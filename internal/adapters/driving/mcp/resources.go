package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Quaestor resources.
	uriScheme = "quaestor://"

	transcriptLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index/state",
		Name:        "index-state",
		Description: "Provisioning state of the search index",
		MIMEType:    "text/plain",
	}, s.handleIndexStateResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "templates",
		Name:        "templates",
		Description: "Available index schema templates",
		MIMEType:    "application/json",
	}, s.handleTemplatesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent retrieval exchanges",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleIndexStateResource reports the index's lifecycle state.
func (s *Server) handleIndexStateResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	state := s.ports.Engine.State()

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     state.String(),
		}},
	}, nil
}

// handleTemplatesResource returns the available schema template names.
func (s *Server) handleTemplatesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names := []string{}
	if s.ports.Schemas != nil {
		names = s.ports.Schemas.List()
	}

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling templates: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleHistoryResource returns recent retrieval exchanges.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Transcripts == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	exchanges, err := s.ports.Transcripts.Recent(ctx, transcriptLimit)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}

	// Build simplified exchange list.
	type exchangeInfo struct {
		Query    string   `json:"query"`
		ChunkIDs []string `json:"chunk_ids"`
		Degraded bool     `json:"degraded"`
		At       string   `json:"at"`
	}

	infos := make([]exchangeInfo, len(exchanges))
	for i, ex := range exchanges {
		infos[i] = exchangeInfo{
			Query:    ex.Query,
			ChunkIDs: ex.ChunkIDs,
			Degraded: ex.Degraded,
			At:       ex.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling exchanges: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
