package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func readRequest(uri string) *sdk.ReadResourceRequest {
	req := &sdk.ReadResourceRequest{}
	req.Params = &sdk.ReadResourceParams{URI: uri}
	return req
}

func TestServer_HandleIndexStateResource(t *testing.T) {
	engine := &mockEngine{
		stateFn: func() domain.ProvisionState { return domain.ProvisionDimensionConflict },
	}
	server := newTestServer(t, engine)

	result, err := server.handleIndexStateResource(context.Background(), readRequest(uriScheme+"index/state"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "dimension_conflict", result.Contents[0].Text)
	assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
}

func TestServer_HandleTemplatesResource(t *testing.T) {
	t.Run("lists template names", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Engine:  &mockEngine{},
			Schemas: &mockSchemaStore{names: []string{"default", "english"}},
		})
		require.NoError(t, err)

		result, err := server.handleTemplatesResource(context.Background(), readRequest(uriScheme+"templates"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var names []string
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &names))
		assert.Equal(t, []string{"default", "english"}, names)
	})

	t.Run("no schema store yields empty list", func(t *testing.T) {
		server := newTestServer(t, &mockEngine{})

		result, err := server.handleTemplatesResource(context.Background(), readRequest(uriScheme+"templates"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_HandleHistoryResource(t *testing.T) {
	t.Run("lists recent exchanges", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Engine: &mockEngine{},
			Transcripts: &mockTranscriptStore{
				exchanges: []domain.Exchange{
					{
						ID:        "e1",
						Query:     "how do shards work",
						ChunkIDs:  []string{"c1", "c2"},
						CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
					},
				},
			},
		})
		require.NoError(t, err)

		result, err := server.handleHistoryResource(context.Background(), readRequest(uriScheme+"history"))
		require.NoError(t, err)

		var infos []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "how do shards work", infos[0]["query"])
	})

	t.Run("no transcript store yields empty list", func(t *testing.T) {
		server := newTestServer(t, &mockEngine{})

		result, err := server.handleHistoryResource(context.Background(), readRequest(uriScheme+"history"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", result.Contents[0].Text)
	})
}
