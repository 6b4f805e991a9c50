package driving

import "github.com/custodia-labs/quaestor/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetTopK updates the default result count per query.
	SetTopK(k int) error

	// SetIndexTemplate selects the schema template used at provisioning.
	SetIndexTemplate(name string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks if current settings are internally consistent.
	Validate() error

	// ValidateEmbeddingConfig validates the current embedding configuration
	// by pinging the provider.
	ValidateEmbeddingConfig() error
}
