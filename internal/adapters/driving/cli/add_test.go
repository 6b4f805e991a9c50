package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

func TestAddCmd_Use(t *testing.T) {
	assert.Equal(t, "add [text]", addCmd.Use)
}

func TestAddCmd_RequiresSourceFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "add", "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestAddCmd_IndexesTextArgument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "add", "the content of a chunk", "--source", "doc_a")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed chunk")
	assert.Contains(t, out, "doc_a")

	result := engineService.Query(context.Background(), domain.Query{
		Text: "the content of a chunk",
		TopK: 1,
	})
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "doc_a", result.Chunks[0].Chunk.Source())
}

func TestAddCmd_ReadsStdinWhenNoArgument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("piped chunk text"))
	defer rootCmd.SetIn(nil)

	out, err := executeCommand(t, "add", "--source", "piped.md")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed chunk")
}

func TestAddCmd_ErrorsWithoutEngine(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	engineService = nil

	_, err := executeCommand(t, "add", "text", "--source", "doc_a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
