package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the JSON HTTP API. The index is provisioned before the server
begins accepting requests.

Endpoints:
  POST   /query             retrieve chunks for a question
  POST   /chunks            index chunks
  DELETE /sources/{source}  delete every chunk from a source
  POST   /clear             delete every chunk
  GET    /healthz           backend and embedding health
  GET    /stats             index state and transcript counts`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if engineService == nil {
		return errNoEngine()
	}

	if err := engineService.EnsureIndex(cmd.Context()); err != nil {
		return fmt.Errorf("provision index: %w", err)
	}

	handler := httpapi.NewHandler(engineService, transcriptStore, version)
	server := &http.Server{
		Addr:              serveAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when the command context is cancelled.
	go func() {
		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	cmd.Printf("Quaestor API listening on %s\n", serveAddr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
