package driven

import (
	"context"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorStore which stores and searches
// vectors. EmbeddingService generates vectors; VectorStore stores them.
// The provisioner treats Dimensions() as authoritative when creating
// the index.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	// This is determined by the model and must match the index mapping.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before provisioning the index.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingValidator checks an embedding configuration by constructing
// a short-lived client and pinging the provider. Used when settings
// change, before anything depends on them.
type EmbeddingValidator interface {
	// ValidateEmbedding reports whether the configuration can reach its
	// provider. Unconfigured settings validate trivially.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
}
