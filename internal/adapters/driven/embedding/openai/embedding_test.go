package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*EmbeddingService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		// A high ceiling keeps the limiter out of the way in tests.
		RequestsPerMinute: 600000,
	})
	require.NoError(t, err)
	return svc, server
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	var gotReq embeddingRequest
	var gotAuth string
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Out-of-order entries must be restored by index.
		_, _ = w.Write([]byte(`{
			"data": [
				{"embedding": [0.3, 0.4], "index": 1},
				{"embedding": [0.1, 0.2], "index": 0}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, DefaultModel, gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)
	assert.Equal(t, 1536, gotReq.Dimensions, "text-embedding-3 models pin dimensions")

	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, embeddings[1])
}

func TestEmbeddingService_EmbedBatch_APIError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestEmbeddingService_EmbedBatch_ConnectionRefused(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"unreachable"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbeddingService_Ping(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEmbeddingService_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{
			name: "known model",
			cfg:  Config{APIKey: "sk-test", Model: "text-embedding-3-large"},
			want: 3072,
		},
		{
			name: "explicit override",
			cfg:  Config{APIKey: "sk-test", Model: "text-embedding-3-small", Dimensions: 256},
			want: 256,
		},
		{
			name: "unknown model falls back",
			cfg:  Config{APIKey: "sk-test", Model: "mystery-embed"},
			want: 1536,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmbeddingService(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.Dimensions())
		})
	}
}
