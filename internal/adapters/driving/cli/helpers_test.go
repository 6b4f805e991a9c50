package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	memsearch "github.com/custodia-labs/quaestor/internal/adapters/driven/search/memory"
	memstorage "github.com/custodia-labs/quaestor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/services"
)

// stubEmbedder produces deterministic vectors so retrieval tests can
// assert ordering without a live embedding provider.
type stubEmbedder struct {
	dims int
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dims)
	for i, r := range text {
		vec[i%s.dims] += float32(r%13) / 13
	}
	return vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int            { return s.dims }
func (s *stubEmbedder) ModelName() string          { return "stub" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

// stubSchemaStore serves a fixed template list.
type stubSchemaStore struct {
	names []string
}

var _ driven.SchemaStore = (*stubSchemaStore)(nil)

func (s *stubSchemaStore) Load(name string, _ domain.SchemaVariables) (domain.IndexSchema, error) {
	for _, n := range s.names {
		if n == name {
			return domain.IndexSchema{Dimension: 8}, nil
		}
	}
	return domain.IndexSchema{}, fmt.Errorf("template %q: %w", name, domain.ErrNotFound)
}

func (s *stubSchemaStore) Validate(domain.IndexSchema) bool { return true }
func (s *stubSchemaStore) List() []string                   { return s.names }

// setupTestServices wires the commands to in-memory services and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldEngine := engineService
	oldSettings := settingsService
	oldSchemas := schemaStore
	oldTranscripts := transcriptStore

	embedder := &stubEmbedder{dims: 8}
	store := memsearch.NewStore()
	engine := services.NewEngine(store, memsearch.NewRetriever(store, embedder), store, store, embedder)
	transcripts := memstorage.NewTranscriptStore()
	engine.SetTranscriptStore(transcripts)

	engineService = engine
	settingsService = services.NewSettingsService(memstorage.NewConfigStore(), nil)
	schemaStore = &stubSchemaStore{names: []string{"default", "english"}}
	transcriptStore = transcripts

	return func() {
		engineService = oldEngine
		settingsService = oldSettings
		schemaStore = oldSchemas
		transcriptStore = oldTranscripts
	}
}

// executeCommand runs the root command with the given args and returns
// the combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// seedChunks indexes chunks through the engine so retrieval tests have
// something to find.
func seedChunks(t *testing.T, texts map[string]string) {
	t.Helper()

	chunks := make([]domain.Chunk, 0, len(texts))
	for source, text := range texts {
		chunks = append(chunks, domain.Chunk{
			Text:     text,
			Metadata: map[string]any{domain.MetaSource: source},
		})
	}

	ids, err := engineService.Add(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, ids, len(chunks))
}
