package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestQuery_Normalised tests top-k clamping
func TestQuery_Normalised(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		expected int
	}{
		{
			name:     "zero falls back to default",
			query:    Query{Text: "what is a quaestor"},
			expected: DefaultTopK,
		},
		{
			name:     "negative falls back to default",
			query:    Query{Text: "q", TopK: -3},
			expected: DefaultTopK,
		},
		{
			name:     "explicit value preserved",
			query:    Query{Text: "q", TopK: 12},
			expected: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.query.Normalised().TopK)
		})
	}
}

// TestRetrievalResult_IDs tests id extraction preserves rank order
func TestRetrievalResult_IDs(t *testing.T) {
	result := RetrievalResult{
		Chunks: []ScoredChunk{
			{Chunk: Chunk{ID: "c-2"}, Score: 9.1},
			{Chunk: Chunk{ID: "c-7"}, Score: 4.2},
			{Chunk: Chunk{ID: "c-1"}, Score: 0.3},
		},
	}

	assert.Equal(t, []string{"c-2", "c-7", "c-1"}, result.IDs())
	assert.False(t, result.Empty())
}

// TestRetrievalResult_Empty tests the empty/degraded distinction
func TestRetrievalResult_Empty(t *testing.T) {
	genuinelyEmpty := RetrievalResult{}
	degraded := RetrievalResult{Degraded: true}

	assert.True(t, genuinelyEmpty.Empty())
	assert.False(t, genuinelyEmpty.Degraded)
	assert.True(t, degraded.Empty())
	assert.True(t, degraded.Degraded)
}

// TestChunk_Source tests metadata source extraction
func TestChunk_Source(t *testing.T) {
	tests := []struct {
		name     string
		chunk    Chunk
		expected string
	}{
		{
			name:     "nil metadata",
			chunk:    Chunk{},
			expected: "",
		},
		{
			name:     "source present",
			chunk:    Chunk{Metadata: map[string]any{MetaSource: "handbook.pdf"}},
			expected: "handbook.pdf",
		},
		{
			name:     "source wrong type",
			chunk:    Chunk{Metadata: map[string]any{MetaSource: 42}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.chunk.Source())
		})
	}
}

// TestChunk_Indexable tests the empty-text rule
func TestChunk_Indexable(t *testing.T) {
	assert.True(t, Chunk{Text: "some content"}.Indexable())
	assert.False(t, Chunk{Embedding: []float32{0.1}}.Indexable())
}
