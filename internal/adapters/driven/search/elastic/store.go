package elastic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorStore    = (*Store)(nil)
	_ driven.IndexLifecycle = (*Store)(nil)
)

// Search shape constants.
const (
	// candidateMultiplier scales k into the ANN candidate pool size.
	candidateMultiplier = 2

	// maxCandidates is the backend's num_candidates ceiling.
	maxCandidates = 10000
)

// Store persists chunks in the backend index and answers single-mode
// queries. The index is the single source of truth; Store keeps no
// state beyond its configuration.
type Store struct {
	client         *Client
	index          string
	fields         fieldNames
	requestTimeout time.Duration
	bulkTimeout    time.Duration
	retryTimeout   time.Duration
}

// NewStore creates a chunk store over the shared client.
func NewStore(client *Client, cfg Config) *Store {
	cfg = cfg.withDefaults()
	return &Store{
		client:         client,
		index:          cfg.Index,
		fields:         newFieldNames(cfg),
		requestTimeout: cfg.RequestTimeout,
		bulkTimeout:    cfg.BulkTimeout,
		retryTimeout:   cfg.RetryTimeout,
	}
}

// Add writes the chunks one document at a time with refresh enabled, so
// they are searchable as soon as the call returns. Chunks without an id
// get a UUID; chunks with empty text are skipped. Per-chunk failures
// are logged and excluded from the returned id list. The error return
// is reserved for context cancellation.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return ids, err
		}
		if !chunk.Indexable() {
			logger.Warn("skipping chunk with empty text (source %q)", chunk.Source())
			continue
		}
		if chunk.ID == "" {
			chunk.ID = uuid.NewString()
		}

		cctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		err := s.client.IndexDocument(cctx, s.index, chunk.ID, s.fields.document(chunk), true)
		cancel()
		if err != nil {
			logger.Error("index chunk %s: %v", chunk.ID, err)
			continue
		}
		ids = append(ids, chunk.ID)
	}

	logger.Debug("indexed %d/%d chunks into %q", len(ids), len(chunks), s.index)
	return ids, nil
}

// Delete removes a single chunk, best-effort. A missing document is
// not worth reporting; anything else is logged and swallowed.
func (s *Store) Delete(ctx context.Context, id string) {
	cctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	err := s.client.DeleteDocument(cctx, s.index, id, true)
	switch {
	case err == nil:
		logger.Debug("deleted chunk %s", id)
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("delete chunk %s: already gone", id)
	default:
		logger.Error("delete chunk %s: %v", id, err)
	}
}

// Query runs a single-mode search: pure vector when the query carries
// an embedding, lexical keyword search otherwise. Backend failures
// collapse to an empty degraded result.
func (s *Store) Query(ctx context.Context, query domain.Query) domain.RetrievalResult {
	q := query.Normalised()

	var body map[string]any
	if len(q.Embedding) > 0 {
		body = s.knnBody(q.Embedding, q.TopK)
	} else {
		body = s.lexicalBody(q.Text, q.TopK)
	}

	cctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := s.client.Search(cctx, s.index, body)
	if err != nil {
		logger.Error("query %q failed: %v", s.index, err)
		return domain.RetrievalResult{Degraded: true}
	}
	return s.fields.toResult(resp, false)
}

// GetByID fetches chunks by id via multi-get. Missing ids are skipped;
// found chunks come back in request order.
func (s *Store) GetByID(ctx context.Context, ids []string) ([]domain.Chunk, error) {
	if len(ids) == 0 {
		return []domain.Chunk{}, nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	docs, err := s.client.MultiGet(cctx, s.index, ids)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(docs))
	for _, doc := range docs {
		if !doc.Found {
			logger.Debug("chunk %s not found, skipping", doc.ID)
			continue
		}
		chunks = append(chunks, s.fields.toChunk(doc.ID, doc.Source))
	}
	return chunks, nil
}

// Ping validates the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	return s.client.Ping(cctx)
}

// knnBody builds a pure vector search request.
func (s *Store) knnBody(embedding []float32, k int) map[string]any {
	return map[string]any{
		"size": k,
		"knn":  s.fields.knnClause(embedding, k),
	}
}

// lexicalBody builds a keyword search request over the text field and
// the source name.
func (s *Store) lexicalBody(text string, k int) map[string]any {
	return map[string]any{
		"size": k,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query": text,
				"fields": []string{
					s.fields.text,
					s.fields.metadata + "." + domain.MetaSource,
				},
			},
		},
	}
}
