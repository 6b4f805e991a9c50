package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// RetrievalSettings holds retrieval behaviour configuration.
type RetrievalSettings struct {
	// TopK is the default number of chunks returned per query.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds search index configuration.
type IndexSettings struct {
	// Name is the logical index name.
	Name string

	// Template is the schema template used to provision the index.
	Template string

	// Variables are the values substituted into the template.
	Variables SchemaVariables
}

// AppSettings holds all application settings.
//
// A populated AppSettings is an immutable snapshot: it is read once at
// start-up, handed to component constructors, and never mutated.
type AppSettings struct {
	// Retrieval holds retrieval behaviour settings.
	Retrieval RetrievalSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Index holds search index settings.
	Index IndexSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured; users must set it up
// explicitly before semantic retrieval works.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		// Embedding is left unconfigured - user must set a provider
		Embedding: EmbeddingSettings{},
		Index: IndexSettings{
			Name:      "quaestor-chunks",
			Template:  "default",
			Variables: DefaultSchemaVariables(),
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
