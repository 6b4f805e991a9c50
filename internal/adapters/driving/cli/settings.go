package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

var (
	providerModel  string
	providerAPIKey string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure retrieval behaviour, the embedding provider, and
index provisioning options.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [ollama|openai]",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider for semantic retrieval.

The index's vector dimension follows the chosen model; changing to a
model with a different dimension requires reindexing.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsTopKCmd = &cobra.Command{
	Use:   "topk [n]",
	Short: "Set the default number of results per query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsTopK,
}

var settingsTemplateCmd = &cobra.Command{
	Use:   "template [name]",
	Short: "Select the schema template used at provisioning",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsTemplate,
}

func init() {
	settingsProviderCmd.Flags().StringVarP(&providerModel, "model", "m", "", "embedding model (empty = provider default)")
	settingsProviderCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key for cloud providers")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsTopKCmd)
	settingsCmd.AddCommand(settingsTemplateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Name: %s\n", settings.Index.Name)
	cmd.Printf("  Template: %s\n", settings.Index.Template)
	cmd.Printf("  Dimension: %d\n", settings.Index.Variables.Dimension)
	cmd.Printf("  Shards: %d, Replicas: %d\n", settings.Index.Variables.Shards, settings.Index.Variables.Replicas)
	cmd.Printf("  Similarity: %s\n", settings.Index.Variables.Similarity.Description())
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q (available: %s)", args[0], providerNames())
	}

	if err := settingsService.SetEmbeddingProvider(provider, providerModel, providerAPIKey); err != nil {
		return fmt.Errorf("set embedding provider: %w", err)
	}

	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("Provider saved, but validation failed: %v\n", err)
		return nil
	}

	cmd.Printf("Embedding provider set to %s\n", provider.Description())
	return nil
}

func runSettingsTopK(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	k, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid top-k %q: %w", args[0], err)
	}
	if err := settingsService.SetTopK(k); err != nil {
		return fmt.Errorf("set top-k: %w", err)
	}

	cmd.Printf("Default top-k set to %d\n", k)
	return nil
}

func runSettingsTemplate(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	name := args[0]
	if schemaStore != nil {
		known := schemaStore.List()
		found := false
		for _, n := range known {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(known, ", "))
		}
	}

	if err := settingsService.SetIndexTemplate(name); err != nil {
		return fmt.Errorf("set index template: %w", err)
	}

	cmd.Printf("Index template set to %s\n", name)
	return nil
}

func providerNames() string {
	providers := domain.AllEmbeddingProviders()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

// maskAPIKey shows only the first and last few characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
