package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorStore      = (*Store)(nil)
	_ driven.IndexLifecycle   = (*Store)(nil)
	_ driven.IndexProvisioner = (*Store)(nil)
)

// Store holds chunks in a map and answers queries with a brute-force
// scan. Insertion order breaks score ties, so results are stable across
// runs. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	order  []string
	state  domain.ProvisionState
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		chunks: make(map[string]domain.Chunk),
		state:  domain.ProvisionAbsent,
	}
}

// Add stores the chunks. Chunks without an id get a UUID; chunks with
// empty text are skipped.
func (s *Store) Add(_ context.Context, chunks []domain.Chunk) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if !chunk.Indexable() {
			logger.Warn("skipping chunk with empty text (source %q)", chunk.Source())
			continue
		}
		if chunk.ID == "" {
			chunk.ID = uuid.NewString()
		}
		if _, exists := s.chunks[chunk.ID]; !exists {
			s.order = append(s.order, chunk.ID)
		}
		s.chunks[chunk.ID] = chunk
		ids = append(ids, chunk.ID)
	}
	return ids, nil
}

// Delete removes a single chunk. Unknown ids are ignored.
func (s *Store) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Query runs a single-mode search: pure vector when the query carries
// an embedding, keyword overlap otherwise.
func (s *Store) Query(_ context.Context, query domain.Query) domain.RetrievalResult {
	q := query.Normalised()

	var scorer func(domain.Chunk) float64
	if len(q.Embedding) > 0 {
		scorer = func(c domain.Chunk) float64 {
			return cosineSimilarity(q.Embedding, c.Embedding)
		}
	} else {
		terms := tokenise(q.Text)
		scorer = func(c domain.Chunk) float64 {
			return lexicalScore(terms, c.Text)
		}
	}

	return domain.RetrievalResult{Chunks: s.rank(q.TopK, scorer)}
}

// GetByID fetches chunks by id. Missing ids are skipped; found chunks
// come back in request order.
func (s *Store) GetByID(_ context.Context, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// DeleteBySource removes every chunk whose source metadata matches and
// returns how many went.
func (s *Store) DeleteBySource(_ context.Context, source string) (int64, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range append([]string(nil), s.order...) {
		if s.chunks[id].Source() == source {
			s.remove(id)
			deleted++
		}
	}
	return deleted, nil
}

// ClearAll removes every chunk.
func (s *Store) ClearAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := int64(len(s.chunks))
	s.chunks = make(map[string]domain.Chunk)
	s.order = nil
	return deleted, nil
}

// EnsureIndex marks the store live. Nothing to provision in memory.
func (s *Store) EnsureIndex(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.ProvisionLive
	return nil
}

// State reports the store's lifecycle state.
func (s *Store) State() domain.ProvisionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// remove deletes one id from both the map and the order slice. Callers
// hold the write lock.
func (s *Store) remove(id string) {
	if _, ok := s.chunks[id]; !ok {
		return
	}
	delete(s.chunks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// rank scores every chunk and returns the best k, skipping zero scores.
func (s *Store) rank(k int, score func(domain.Chunk) float64) []domain.ScoredChunk {
	s.mu.RLock()
	scored := make([]domain.ScoredChunk, 0, len(s.order))
	for _, id := range s.order {
		chunk := s.chunks[id]
		if sc := score(chunk); sc > 0 {
			scored = append(scored, domain.ScoredChunk{Chunk: chunk, Score: sc})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched lengths and zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenise lowercases and splits on anything that is not a letter or a
// digit.
func tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// lexicalScore is the fraction of query terms present in the text.
func lexicalScore(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}

	present := make(map[string]bool)
	for _, token := range tokenise(text) {
		present[token] = true
	}

	var matched int
	for _, term := range terms {
		if present[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
