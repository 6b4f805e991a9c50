package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Retrieve the chunks most relevant to a question",
	Long: `Runs hybrid retrieval for the question: approximate nearest-neighbour
vector search fused with keyword (BM25) search in a single backend
round trip. Falls back to vector-only search when fusion fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to return (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if engineService == nil {
		return errNoEngine()
	}

	topK := askTopK
	if topK < 1 && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			topK = settings.Retrieval.TopK
		}
	}

	result := engineService.Query(cmd.Context(), domain.Query{
		Text: args[0],
		TopK: topK,
	})

	if askJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultTable(cmd, result)
}

// resultJSON is the JSON shape of a retrieval result.
type resultJSON struct {
	Chunks []chunkJSON `json:"chunks"`
	Count  int         `json:"count"`

	// Degraded is true when a fallback path produced the result.
	Degraded bool `json:"degraded"`
}

type chunkJSON struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func outputResultJSON(cmd *cobra.Command, result domain.RetrievalResult) error {
	out := resultJSON{
		Chunks:   make([]chunkJSON, len(result.Chunks)),
		Count:    len(result.Chunks),
		Degraded: result.Degraded,
	}
	for i, sc := range result.Chunks {
		out.Chunks[i] = chunkJSON{
			ID:       sc.Chunk.ID,
			Text:     sc.Chunk.Text,
			Score:    sc.Score,
			Metadata: sc.Chunk.Metadata,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultTable(cmd *cobra.Command, result domain.RetrievalResult) error {
	if result.Empty() {
		if result.Degraded {
			cmd.Println("No results (retrieval was degraded; the backend may be unreachable).")
		} else {
			cmd.Println("No results found.")
		}
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, sc := range result.Chunks {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, sc.Chunk.ID, sc.Score)
		if source := sc.Chunk.Source(); source != "" {
			cmd.Printf("      Source: %s\n", source)
		}
		cmd.Printf("      %s\n", snippet(sc.Chunk.Text))
		cmd.Println()
	}

	if result.Degraded {
		cmd.Println("Note: retrieval was degraded; results came from the vector-only fallback.")
	}
	return nil
}

// snippet truncates chunk text to one displayable line.
func snippet(text string) string {
	const max = 120
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
