package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyDays  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent retrieval exchanges",
	RunE:  runHistory,
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old retrieval exchanges",
	RunE:  runHistoryPurge,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of exchanges to show")
	historyPurgeCmd.Flags().IntVar(&historyDays, "days", 30, "delete exchanges older than this many days")
	historyCmd.AddCommand(historyPurgeCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if transcriptStore == nil {
		return errors.New("transcript store not configured")
	}

	exchanges, err := transcriptStore.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(exchanges) == 0 {
		cmd.Println("No history.")
		return nil
	}

	for _, ex := range exchanges {
		flags := ""
		if ex.Degraded {
			flags = " [degraded]"
		}
		cmd.Printf("%s  %q -> %d chunk(s)%s\n",
			ex.CreatedAt.Local().Format("2006-01-02 15:04"), ex.Query, len(ex.ChunkIDs), flags)
		if len(ex.ChunkIDs) > 0 {
			cmd.Printf("    %s\n", strings.Join(ex.ChunkIDs, ", "))
		}
	}
	return nil
}

func runHistoryPurge(cmd *cobra.Command, _ []string) error {
	if transcriptStore == nil {
		return errors.New("transcript store not configured")
	}
	if historyDays < 0 {
		return fmt.Errorf("days must be >= 0, got %d", historyDays)
	}

	cutoff := time.Now().AddDate(0, 0, -historyDays)
	purged, err := transcriptStore.PurgeOlderThan(cmd.Context(), cutoff)
	if err != nil {
		return fmt.Errorf("purge history: %w", err)
	}

	cmd.Printf("Purged %d exchange(s)\n", purged)
	return nil
}
