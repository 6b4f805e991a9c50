package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// mockEngine is a hand-rolled RetrievalEngine mock. Function fields
// override behaviour per test; unset fields return zero values.
type mockEngine struct {
	ensureIndexFn    func(ctx context.Context) error
	addFn            func(ctx context.Context, chunks []domain.Chunk) ([]string, error)
	queryFn          func(ctx context.Context, query domain.Query) domain.RetrievalResult
	deleteBySourceFn func(ctx context.Context, source string) (int64, error)
	clearAllFn       func(ctx context.Context) (int64, error)
	stateFn          func() domain.ProvisionState
	pingFn           func(ctx context.Context) error
}

var _ driving.RetrievalEngine = (*mockEngine)(nil)

func (m *mockEngine) EnsureIndex(ctx context.Context) error {
	if m.ensureIndexFn != nil {
		return m.ensureIndexFn(ctx)
	}
	return nil
}

func (m *mockEngine) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if m.addFn != nil {
		return m.addFn(ctx, chunks)
	}
	return nil, nil
}

func (m *mockEngine) Query(ctx context.Context, query domain.Query) domain.RetrievalResult {
	if m.queryFn != nil {
		return m.queryFn(ctx, query)
	}
	return domain.RetrievalResult{}
}

func (m *mockEngine) DeleteBySource(ctx context.Context, source string) (int64, error) {
	if m.deleteBySourceFn != nil {
		return m.deleteBySourceFn(ctx, source)
	}
	return 0, nil
}

func (m *mockEngine) ClearAll(ctx context.Context) (int64, error) {
	if m.clearAllFn != nil {
		return m.clearAllFn(ctx)
	}
	return 0, nil
}

func (m *mockEngine) State() domain.ProvisionState {
	if m.stateFn != nil {
		return m.stateFn()
	}
	return domain.ProvisionLive
}

func (m *mockEngine) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// mockSchemaStore returns a fixed template list.
type mockSchemaStore struct {
	names []string
}

var _ driven.SchemaStore = (*mockSchemaStore)(nil)

func (m *mockSchemaStore) Load(string, domain.SchemaVariables) (domain.IndexSchema, error) {
	return domain.IndexSchema{}, domain.ErrNotFound
}

func (m *mockSchemaStore) Validate(domain.IndexSchema) bool { return false }

func (m *mockSchemaStore) List() []string { return m.names }

// mockTranscriptStore returns canned exchanges.
type mockTranscriptStore struct {
	exchanges []domain.Exchange
	recentErr error
}

var _ driven.TranscriptStore = (*mockTranscriptStore)(nil)

func (m *mockTranscriptStore) Append(context.Context, domain.Exchange) error { return nil }

func (m *mockTranscriptStore) Recent(_ context.Context, limit int) ([]domain.Exchange, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if limit < len(m.exchanges) {
		return m.exchanges[:limit], nil
	}
	return m.exchanges, nil
}

func (m *mockTranscriptStore) PurgeOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *mockTranscriptStore) Count(context.Context) (int64, error) {
	return int64(len(m.exchanges)), nil
}

func (m *mockTranscriptStore) Close() error { return nil }
