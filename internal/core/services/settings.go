package services

import (
	"fmt"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyTopK            = "retrieval.top_k"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyIndexName       = "index.name"
	keyIndexTemplate   = "index.template"
	keyIndexDimension  = "index.dimension"
	keyIndexShards     = "index.shards"
	keyIndexReplicas   = "index.replicas"
	keyIndexSimilarity = "index.similarity"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, defaults.Retrieval.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Index: domain.IndexSettings{
			Name:     s.getString(keyIndexName, defaults.Index.Name),
			Template: s.getString(keyIndexTemplate, defaults.Index.Template),
			Variables: domain.SchemaVariables{
				Dimension:  s.getInt(keyIndexDimension, defaults.Index.Variables.Dimension),
				Shards:     s.getInt(keyIndexShards, defaults.Index.Variables.Shards),
				Replicas:   s.getInt(keyIndexReplicas, defaults.Index.Variables.Replicas),
				Similarity: s.getSimilarity(defaults.Index.Variables.Similarity),
			},
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save retrieval settings
	if err := s.configStore.Set(keyTopK, settings.Retrieval.TopK); err != nil {
		return fmt.Errorf("save top_k: %w", err)
	}

	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save index settings
	if err := s.configStore.Set(keyIndexName, settings.Index.Name); err != nil {
		return fmt.Errorf("save index name: %w", err)
	}
	if err := s.configStore.Set(keyIndexTemplate, settings.Index.Template); err != nil {
		return fmt.Errorf("save index template: %w", err)
	}
	if err := s.configStore.Set(keyIndexDimension, settings.Index.Variables.Dimension); err != nil {
		return fmt.Errorf("save index dimension: %w", err)
	}
	if err := s.configStore.Set(keyIndexShards, settings.Index.Variables.Shards); err != nil {
		return fmt.Errorf("save index shards: %w", err)
	}
	if err := s.configStore.Set(keyIndexReplicas, settings.Index.Variables.Replicas); err != nil {
		return fmt.Errorf("save index replicas: %w", err)
	}
	if err := s.configStore.Set(keyIndexSimilarity, settings.Index.Variables.Similarity.String()); err != nil {
		return fmt.Errorf("save index similarity: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	validProviders := domain.AllEmbeddingProviders()
	valid := false
	for _, p := range validProviders {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	// Update index dimension based on model
	dims := domain.EmbeddingDimensions()
	if d, ok := dims[settings.Embedding.Model]; ok {
		settings.Index.Variables.Dimension = d
	}

	return s.Save(settings)
}

// SetTopK updates the default result count per query.
func (s *SettingsService) SetTopK(k int) error {
	if k < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", k)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Retrieval.TopK = k

	return s.Save(settings)
}

// SetIndexTemplate selects the schema template used at provisioning.
func (s *SettingsService) SetIndexTemplate(name string) error {
	if name == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Index.Template = name

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks if current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Retrieval.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", settings.Retrieval.TopK)
	}

	if settings.Index.Name == "" {
		return fmt.Errorf("index name cannot be empty")
	}

	if !settings.Index.Variables.Similarity.IsValid() {
		return fmt.Errorf("invalid similarity function: %s", settings.Index.Variables.Similarity)
	}

	// An unset provider is fine: lexical retrieval works without one.
	// A set provider must be usable.
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf(
			"embedding provider %q requires an API key",
			settings.Embedding.Provider,
		)
	}

	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getSimilarity(defaultVal domain.Similarity) domain.Similarity {
	val := s.configStore.GetString(keyIndexSimilarity)
	if val == "" {
		return defaultVal
	}
	similarity := domain.Similarity(val)
	if !similarity.IsValid() {
		return defaultVal
	}
	return similarity
}
