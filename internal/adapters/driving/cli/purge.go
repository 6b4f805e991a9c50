package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

var clearYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [source]",
	Short: "Delete every chunk from a source",
	Long: `Deletes all chunks whose source metadata matches the given identifier.
Version conflicts from concurrent writers are tolerated; the command
reports how many chunks were actually removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every chunk in the index",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if engineService == nil {
		return errNoEngine()
	}
	source := args[0]

	deleted, err := engineService.DeleteBySource(cmd.Context(), source)
	if err != nil {
		if errors.Is(err, domain.ErrWriteConflict) {
			cmd.Printf("Deleted %d chunk(s) from %s before a sustained conflict; re-run to finish.\n", deleted, source)
			return nil
		}
		return fmt.Errorf("delete source %s: %w", source, err)
	}

	cmd.Printf("Deleted %d chunk(s) from %s\n", deleted, source)
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if engineService == nil {
		return errNoEngine()
	}

	if !clearYes {
		cmd.Print("Delete ALL indexed chunks? [y/N]: ")
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer) //nolint:errcheck
		if answer != "y" && answer != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	deleted, err := engineService.ClearAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	cmd.Printf("Deleted %d chunk(s)\n", deleted)
	return nil
}
