package elastic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// clearPageSize bounds each enumeration page during the clear-all
// fallback.
const clearPageSize = 500

// DeleteBySource removes every chunk whose source metadata matches.
// Conflicts are tolerated (the backend proceeds past them) and retried
// once synchronously; a sustained conflict reports the partial count
// together with an error wrapping domain.ErrWriteConflict.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int64, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}

	body := map[string]any{
		"query": map[string]any{
			"term": map[string]any{
				s.fields.metadata + "." + domain.MetaSource: source,
			},
		},
	}

	deleted, err := s.deleteByQuery(ctx, body)
	if err != nil {
		return deleted, fmt.Errorf("delete source %q: %w", source, err)
	}
	logger.Info("deleted %d chunk(s) from source %q", deleted, source)
	return deleted, nil
}

// ClearAll removes every chunk in the index. When bulk deletion keeps
// conflicting it falls back to enumerating ids page by page and issuing
// per-id bulk deletes, ignoring individual not-found and conflict
// statuses.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	matchAll := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	}

	deleted, err := s.deleteByQuery(ctx, matchAll)
	if err == nil {
		logger.Info("cleared %d chunk(s) from %q", deleted, s.index)
		return deleted, nil
	}
	if !errors.Is(err, domain.ErrWriteConflict) {
		return deleted, fmt.Errorf("clear index %q: %w", s.index, err)
	}

	logger.Warn("bulk clear of %q kept conflicting, falling back to per-id deletes", s.index)
	swept, err := s.clearByEnumeration(ctx)
	deleted += swept
	if err != nil {
		return deleted, fmt.Errorf("clear index %q: %w", s.index, err)
	}
	logger.Info("cleared %d chunk(s) from %q", deleted, s.index)
	return deleted, nil
}

// deleteByQuery runs one query-scoped deletion with the proceed-and-count
// conflict policy, retrying once with synchronous completion and a
// longer deadline when conflicts were reported.
func (s *Store) deleteByQuery(ctx context.Context, body map[string]any) (int64, error) {
	cctx, cancel := context.WithTimeout(ctx, s.bulkTimeout)
	resp, err := s.client.DeleteByQuery(cctx, s.index, body, deleteByQueryOptions{
		Conflicts: "proceed",
		Refresh:   true,
		Timeout:   s.bulkTimeout,
	})
	cancel()
	if err != nil && !errors.Is(err, domain.ErrWriteConflict) {
		return 0, err
	}

	var deleted, conflicts int64
	if resp != nil {
		deleted = resp.Deleted
		conflicts = resp.VersionConflicts
	}
	if err == nil && conflicts == 0 {
		return deleted, nil
	}

	logger.Warn("delete by query on %q hit %d version conflict(s), retrying once", s.index, conflicts)

	rctx, cancel := context.WithTimeout(ctx, s.retryTimeout)
	retry, err := s.client.DeleteByQuery(rctx, s.index, body, deleteByQueryOptions{
		Conflicts:         "proceed",
		Refresh:           true,
		Timeout:           s.retryTimeout,
		WaitForCompletion: true,
	})
	cancel()
	if retry != nil {
		deleted += retry.Deleted
		conflicts = retry.VersionConflicts
	}
	if err != nil && !errors.Is(err, domain.ErrWriteConflict) {
		return deleted, err
	}
	if err != nil || conflicts > 0 {
		return deleted, fmt.Errorf("%d document(s) still conflicted after retry: %w", conflicts, domain.ErrWriteConflict)
	}
	return deleted, nil
}

// clearByEnumeration sweeps the index page by page: list ids, bulk
// delete them, repeat until a page comes back empty. Individual 404 and
// 409 item statuses are ignored; a page that makes no progress at all
// stops the sweep.
func (s *Store) clearByEnumeration(ctx context.Context) (int64, error) {
	listBody := map[string]any{
		"query":   map[string]any{"match_all": map[string]any{}},
		"size":    clearPageSize,
		"_source": false,
		"sort":    []string{"_doc"},
	}

	var total int64
	for {
		cctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		page, err := s.client.Search(cctx, s.index, listBody)
		cancel()
		if err != nil {
			return total, fmt.Errorf("enumerate chunks: %w", err)
		}
		if len(page.Hits.Hits) == 0 {
			return total, nil
		}

		var actions strings.Builder
		for _, hit := range page.Hits.Hits {
			fmt.Fprintf(&actions, `{"delete":{"_index":%q,"_id":%q}}`+"\n", s.index, hit.ID)
		}

		bctx, cancel := context.WithTimeout(ctx, s.bulkTimeout)
		resp, err := s.client.Bulk(bctx, s.index, []byte(actions.String()), true)
		cancel()
		if err != nil {
			return total, fmt.Errorf("bulk delete page: %w", err)
		}

		var swept int64
		for _, item := range resp.Items {
			outcome, ok := item["delete"]
			if !ok {
				continue
			}
			switch outcome.Status {
			case http.StatusOK:
				swept++
			case http.StatusNotFound, http.StatusConflict:
				// Already gone or racing another writer; either way the
				// next page re-lists whatever survived.
			default:
				logger.Warn("bulk delete of chunk %s returned status %d", outcome.ID, outcome.Status)
			}
		}
		total += swept

		if swept == 0 {
			return total, fmt.Errorf("page of %d made no progress: %w", len(page.Hits.Hits), domain.ErrWriteConflict)
		}
		logger.Debug("swept %d chunk(s) from %q", swept, s.index)
	}
}
