package elastic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// --- Test helpers ---

// newTestBackend starts a fake backend and returns a config pointing at it.
func newTestBackend(t *testing.T, handler http.Handler) (*Client, Config) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		BaseURL:        server.URL,
		Index:          "test-chunks",
		RequestTimeout: 2 * time.Second,
		BulkTimeout:    2 * time.Second,
		RetryTimeout:   2 * time.Second,
	}
	return NewClient(cfg), cfg
}

// decodeBody reads a request body into a generic map.
func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

// writeJSON responds with the given value.
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

// searchHits builds a backend search response from id/score/text triples.
func searchHits(hits ...map[string]any) map[string]any {
	return map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": len(hits)},
			"hits":  hits,
		},
	}
}

func hit(id string, score float64, text string) map[string]any {
	return map[string]any{
		"_id":    id,
		"_score": score,
		"_source": map[string]any{
			"content":   text,
			"embedding": []float64{0.1, 0.2},
			"metadata":  map[string]any{"source": "doc.pdf"},
		},
	}
}

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int
	model     string
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockSchemaStore implements driven.SchemaStore for testing.
type mockSchemaStore struct {
	schema   domain.IndexSchema
	loadErr  error
	invalid  bool
	names    []string
	loadVars []domain.SchemaVariables
}

func (m *mockSchemaStore) Load(_ string, vars domain.SchemaVariables) (domain.IndexSchema, error) {
	m.loadVars = append(m.loadVars, vars)
	if m.loadErr != nil {
		return domain.IndexSchema{}, m.loadErr
	}
	schema := m.schema
	schema.Dimension = vars.Dimension
	schema.Body = testSchemaBody(vars.Dimension)
	return schema, nil
}

func (m *mockSchemaStore) Validate(_ domain.IndexSchema) bool {
	return !m.invalid
}

func (m *mockSchemaStore) List() []string {
	return m.names
}

// testSchemaBody renders a full creation document at the given dimension.
func testSchemaBody(dimension int) json.RawMessage {
	body := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"content": map[string]any{"type": "text"},
				"embedding": map[string]any{
					"type":       "dense_vector",
					"dims":       dimension,
					"index":      true,
					"similarity": "cosine",
				},
				"metadata": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source":    map[string]any{"type": "keyword"},
						"page":      map[string]any{"type": "integer"},
						"chunk_id":  map[string]any{"type": "keyword"},
						"timestamp": map[string]any{"type": "date"},
						"file_type": map[string]any{"type": "keyword"},
						"file_size": map[string]any{"type": "long"},
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

// testSchema is the structured view matching testSchemaBody.
func testSchema(dimension int) domain.IndexSchema {
	return domain.IndexSchema{
		Template:           "default",
		Dimension:          dimension,
		Shards:             1,
		Replicas:           0,
		Similarity:         domain.SimilarityCosine,
		TextField:          "content",
		VectorField:        "embedding",
		MetadataField:      "metadata",
		MetadataProperties: domain.RequiredMetadataProperties(),
		Body:               testSchemaBody(dimension),
	}
}
