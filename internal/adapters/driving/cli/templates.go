package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available index schema templates",
	Long: `Lists the schema templates usable at provisioning time: the embedded
defaults plus any user-defined templates in ~/.quaestor/templates.`,
	RunE: runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	if schemaStore == nil {
		return errors.New("schema store not configured")
	}

	names := schemaStore.List()
	if len(names) == 0 {
		cmd.Println("No templates found.")
		return nil
	}

	active := ""
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			active = settings.Index.Template
		}
	}

	cmd.Println("Templates:")
	for _, name := range names {
		marker := " "
		if name == active {
			marker = "*"
		}
		cmd.Printf("  %s %s\n", marker, name)
	}
	return nil
}
