package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

var (
	addSource   string
	addFileType string
	addPage     int
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Index a chunk of text",
	Long: `Indexes a chunk of text under the given source. The chunk is embedded
with the configured embedding model before it is written.

Reads from stdin when no text argument is given:
  cat notes.md | quaestor add --source notes.md --type md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addSource, "source", "s", "", "originating document identifier (required)")
	addCmd.Flags().StringVarP(&addFileType, "type", "t", "txt", "originating document format")
	addCmd.Flags().IntVarP(&addPage, "page", "p", 0, "page number within the document")
	addCmd.MarkFlagRequired("source") //nolint:errcheck
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if engineService == nil {
		return errNoEngine()
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if text == "" {
		return fmt.Errorf("%w: no text to index", domain.ErrInvalidInput)
	}

	chunk := domain.Chunk{
		Text: text,
		Metadata: map[string]any{
			domain.MetaSource:    addSource,
			domain.MetaFileType:  addFileType,
			domain.MetaFileSize:  len(text),
			domain.MetaPage:      addPage,
			domain.MetaTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	ids, err := engineService.Add(cmd.Context(), []domain.Chunk{chunk})
	if err != nil {
		return fmt.Errorf("add chunk: %w", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("chunk was not written")
	}

	cmd.Printf("Indexed chunk %s (source: %s)\n", ids[0], addSource)
	return nil
}
