package ai

import (
	"testing"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
				svc.Close()
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestValidateEmbeddingConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantErr:  false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingConfig(tt.settings)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "unreachable provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://127.0.0.1:1", // Nothing listens here.
				Model:    "nomic-embed-text",
			},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAndValidateEmbeddingService(tt.settings)

			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantNil && svc != nil {
				t.Error("expected nil service")
				svc.Close()
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestValidateEmbeddingConfig_UnreachableOllama(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1", // Nothing listens here.
		Model:    "nomic-embed-text",
	}

	err := ValidateEmbeddingConfig(settings)
	if err == nil {
		t.Fatal("expected error for unreachable provider")
	}
}

func TestCreateOllamaEmbedding_KnownModelDimensions(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "all-minilm",
	}

	svc := createOllamaEmbedding(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if got := svc.Dimensions(); got != 384 {
		t.Errorf("dimensions = %d, want 384", got)
	}
}

func TestCreateOllamaEmbedding_UnknownModelFallsBack(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "custom-model-unknown",
	}

	svc := createOllamaEmbedding(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if got := svc.Dimensions(); got == 0 {
		t.Error("dimensions should fall back to a non-zero default")
	}
}

func TestCreateOpenAIEmbedding_Success(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  "https://api.openai.com/v1",
		Model:    "text-embedding-3-small",
	}

	svc, err := createOpenAIEmbedding(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

// contains checks if s contains substr.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
