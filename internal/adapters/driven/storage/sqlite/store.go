package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/quaestor/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
)

// Store is a SQLite-backed store for local metadata. Chunks never live
// here; the search index owns those. The database holds only the query
// transcript.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.quaestor/data/transcript.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quaestor", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "transcript.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TranscriptStore returns a TranscriptStore interface backed by this store.
func (s *Store) TranscriptStore() driven.TranscriptStore {
	return &transcriptStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Transcript Store ====================

// transcriptStore implements driven.TranscriptStore.
type transcriptStore struct {
	store *Store
}

var _ driven.TranscriptStore = (*transcriptStore)(nil)

// Append records an exchange.
func (t *transcriptStore) Append(ctx context.Context, exchange domain.Exchange) error {
	if exchange.ID == "" {
		return fmt.Errorf("%w: exchange id is empty", domain.ErrInvalidInput)
	}

	chunkIDs, err := json.Marshal(exchange.ChunkIDs)
	if err != nil {
		return fmt.Errorf("marshalling chunk ids: %w", err)
	}

	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}

	_, err = t.store.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, query, chunk_ids, degraded, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, exchange.ID, exchange.Query, string(chunkIDs), exchange.Degraded, exchange.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("appending exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first.
// A limit below 1 returns everything.
func (t *transcriptStore) Recent(ctx context.Context, limit int) ([]domain.Exchange, error) {
	if limit < 1 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}

	rows, err := t.store.db.QueryContext(ctx, `
		SELECT id, query, chunk_ids, degraded, created_at
		FROM exchanges
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []domain.Exchange
	for rows.Next() {
		var exchange domain.Exchange
		var chunkIDs string
		var createdAt sql.NullTime
		if err := rows.Scan(&exchange.ID, &exchange.Query, &chunkIDs,
			&exchange.Degraded, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}

		if err := json.Unmarshal([]byte(chunkIDs), &exchange.ChunkIDs); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk ids: %w", err)
		}
		if createdAt.Valid {
			exchange.CreatedAt = createdAt.Time.UTC()
		}

		exchanges = append(exchanges, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchanges: %w", err)
	}

	return exchanges, nil
}

// PurgeOlderThan deletes exchanges created before the cutoff.
func (t *transcriptStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := t.store.db.ExecContext(ctx,
		"DELETE FROM exchanges WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging exchanges: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged exchanges: %w", err)
	}
	return purged, nil
}

// Count returns the number of stored exchanges.
func (t *transcriptStore) Count(ctx context.Context) (int64, error) {
	var count int64
	row := t.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM exchanges")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting exchanges: %w", err)
	}
	return count, nil
}

// Close is a no-op; the owning Store closes the connection.
func (t *transcriptStore) Close() error {
	return nil
}
