package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create or validate the search index",
	Long: `Ensures the search index exists with a schema compatible with the
configured embedding model. Creates the index on first run, applies
additive mapping updates when the schema template has gained fields,
and refuses to touch an index whose vector dimension disagrees with
the model.`,
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	if engineService == nil {
		return errNoEngine()
	}

	err := engineService.EnsureIndex(cmd.Context())
	state := engineService.State()

	if err != nil {
		if errors.Is(err, domain.ErrDimensionConflict) {
			cmd.Printf("Index state: %s\n", state.Description())
			cmd.Println("The live index was built for a different embedding model.")
			cmd.Println("Reindex explicitly: 'quaestor clear' and 'quaestor provision', or change index.name.")
			return err
		}
		return fmt.Errorf("provision index: %w", err)
	}

	cmd.Printf("Index state: %s\n", state.Description())
	return nil
}
