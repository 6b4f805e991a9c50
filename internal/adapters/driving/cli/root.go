// Package cli provides the command-line interface for Quaestor.
// Commands are thin callers of the retrieval engine; wiring happens
// once in initServices and the resulting services are injected as
// package-level vars so tests can swap them for mocks.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/quaestor/internal/adapters/driven/config/file"
	schemafile "github.com/custodia-labs/quaestor/internal/adapters/driven/schema/file"
	"github.com/custodia-labs/quaestor/internal/adapters/driven/search/elastic"
	memsearch "github.com/custodia-labs/quaestor/internal/adapters/driven/search/memory"
	memstorage "github.com/custodia-labs/quaestor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quaestor/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
	"github.com/custodia-labs/quaestor/internal/core/services"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Environment variables for the search backend connection. Credentials
// stay out of the config file; main loads them from the environment
// (or a .env file) before Execute runs.
const (
	envBackendURL      = "QUAESTOR_ES_URL"
	envBackendUsername = "QUAESTOR_ES_USERNAME"
	envBackendPassword = "QUAESTOR_ES_PASSWORD"
	envBackendAPIKey   = "QUAESTOR_ES_API_KEY"
)

// Services injected into commands. Populated by initServices on first
// use; tests assign mocks directly and skip initialisation.
var (
	version = "dev"

	engineService   driving.RetrievalEngine
	settingsService driving.SettingsService
	schemaStore     driven.SchemaStore
	transcriptStore driven.TranscriptStore
)

var (
	verbose   bool
	useMemory bool
)

var rootCmd = &cobra.Command{
	Use:   "quaestor",
	Short: "Hybrid document retrieval over a search backend",
	Long: `Quaestor indexes embedded document chunks in an Elasticsearch-compatible
backend and retrieves them with fused vector and keyword search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "use the in-memory backend (nothing persists)")
}

// Execute runs the root command. The version is injected by main.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// initServices wires the application together: config, settings,
// schema templates, transcripts, embedding, and the retrieval engine.
// It is a no-op when services are already set (tests inject their own).
func initServices() error {
	if settingsService != nil {
		return nil
	}

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	schemaStore, err = schemafile.NewSchemaStore("")
	if err != nil {
		return fmt.Errorf("open schema store: %w", err)
	}

	if useMemory {
		transcriptStore = memstorage.NewTranscriptStore()
	} else {
		sqliteStore, err := sqlite.NewStore("")
		if err != nil {
			return fmt.Errorf("open transcript store: %w", err)
		}
		transcriptStore = sqliteStore.TranscriptStore()
	}

	// Without a configured embedding provider there is no engine:
	// commands that need one tell the user how to set it up.
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	if embedder == nil {
		logger.Debug("no embedding provider configured, retrieval engine disabled")
		return nil
	}

	var engine *services.Engine
	if useMemory {
		store := memsearch.NewStore()
		engine = services.NewEngine(store, memsearch.NewRetriever(store, embedder), store, store, embedder)
	} else {
		cfg := elastic.Config{
			BaseURL:   os.Getenv(envBackendURL),
			Username:  os.Getenv(envBackendUsername),
			Password:  os.Getenv(envBackendPassword),
			APIKey:    os.Getenv(envBackendAPIKey),
			Index:     settings.Index.Name,
			Template:  settings.Index.Template,
			Variables: settings.Index.Variables,
		}
		client := elastic.NewClient(cfg)
		store := elastic.NewStore(client, cfg)
		retriever := elastic.NewRetriever(client, embedder, cfg)
		provisioner := elastic.NewProvisioner(client, schemaStore, embedder, cfg)
		engine = services.NewEngine(store, retriever, store, provisioner, embedder)
	}

	engine.SetTranscriptStore(transcriptStore)
	engineService = engine
	return nil
}

// errNoEngine is the guidance returned by commands that need the
// retrieval engine when no embedding provider is configured.
func errNoEngine() error {
	return fmt.Errorf("retrieval engine not configured: set an embedding provider with 'quaestor settings provider'")
}
