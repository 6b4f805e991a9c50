package ollama

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

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	var gotReq embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := embedResponse{Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Model: "all-minilm", Dimensions: 2})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "all-minilm", gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, embeddings[1])
}

func TestEmbeddingService_Embed_UsesBatchEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := embedResponse{Embeddings: [][]float32{{1, 2, 3}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, embedding)
}

func TestEmbeddingService_EmbedBatch_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := embedResponse{Embeddings: [][]float32{{1}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embedding(s) for 2 input(s)")
}

func TestEmbeddingService_EmbedBatch_ConnectionRefused(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := svc.EmbedBatch(context.Background(), []string{"unreachable"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbeddingService_EmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	embeddings, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEmbeddingService_Ping_Unreachable(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	err := svc.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}
