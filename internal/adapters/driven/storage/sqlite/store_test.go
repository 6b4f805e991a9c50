package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "quaestor-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// appendExchange stores a test exchange with the given age.
func appendExchange(t *testing.T, store *Store, id string, age time.Duration) {
	t.Helper()

	err := store.TranscriptStore().Append(context.Background(), domain.Exchange{
		ID:        id,
		Query:     "query for " + id,
		ChunkIDs:  []string{id + "-chunk-1", id + "-chunk-2"},
		CreatedAt: time.Now().UTC().Add(-age),
	})
	require.NoError(t, err)
}

// --- Tests ---

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.FileExists(t, store.Path())
	assert.Equal(t, "transcript.db", filepath.Base(store.Path()))
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "quaestor-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)
	appendExchange(t, store1, "survives-reopen", 0)
	require.NoError(t, store1.Close())

	// Re-opening must not re-run migrations or lose data.
	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	count, err := store2.TranscriptStore().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTranscriptStore_AppendAndRecent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	transcripts := store.TranscriptStore()

	appendExchange(t, store, "oldest", 3*time.Hour)
	appendExchange(t, store, "middle", 2*time.Hour)
	appendExchange(t, store, "newest", 1*time.Hour)

	exchanges, err := transcripts.Recent(ctx, 2)
	require.NoError(t, err)

	require.Len(t, exchanges, 2)
	assert.Equal(t, "newest", exchanges[0].ID)
	assert.Equal(t, "middle", exchanges[1].ID)
	assert.Equal(t, "query for newest", exchanges[0].Query)
	assert.Equal(t, []string{"newest-chunk-1", "newest-chunk-2"}, exchanges[0].ChunkIDs)
}

func TestTranscriptStore_Recent_NoLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		appendExchange(t, store, fmt.Sprintf("ex-%d", i), time.Duration(i)*time.Minute)
	}

	exchanges, err := store.TranscriptStore().Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, exchanges, 5)
}

func TestTranscriptStore_Recent_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	exchanges, err := store.TranscriptStore().Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestTranscriptStore_Append_PreservesDegradedFlag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	transcripts := store.TranscriptStore()

	err := transcripts.Append(ctx, domain.Exchange{
		ID:        "degraded-exchange",
		Query:     "what broke",
		ChunkIDs:  []string{},
		Degraded:  true,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	exchanges, err := transcripts.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.True(t, exchanges[0].Degraded)
	assert.Empty(t, exchanges[0].ChunkIDs)
}

func TestTranscriptStore_Append_RejectsEmptyID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.TranscriptStore().Append(context.Background(), domain.Exchange{Query: "no id"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTranscriptStore_Append_DefaultsCreatedAt(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	transcripts := store.TranscriptStore()

	err := transcripts.Append(ctx, domain.Exchange{ID: "no-timestamp", Query: "when"})
	require.NoError(t, err)

	exchanges, err := transcripts.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.WithinDuration(t, time.Now().UTC(), exchanges[0].CreatedAt, 5*time.Second)
}

func TestTranscriptStore_PurgeOlderThan(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	transcripts := store.TranscriptStore()

	appendExchange(t, store, "ancient", 48*time.Hour)
	appendExchange(t, store, "old", 25*time.Hour)
	appendExchange(t, store, "fresh", 1*time.Hour)

	purged, err := transcripts.PurgeOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	exchanges, err := transcripts.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "fresh", exchanges[0].ID)
}

func TestTranscriptStore_Count(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	transcripts := store.TranscriptStore()

	count, err := transcripts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	appendExchange(t, store, "one", time.Minute)
	appendExchange(t, store, "two", time.Second)

	count, err = transcripts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
