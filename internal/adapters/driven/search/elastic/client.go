package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL        = "http://localhost:9200"
	DefaultIndex          = "quaestor-chunks"
	DefaultRequestTimeout = 10 * time.Second
	DefaultBulkTimeout    = 2 * time.Minute
	DefaultRetryTimeout   = 5 * time.Minute
)

// Config holds configuration for the backend adapter. One value is
// constructed at start-up and handed, immutable, to every constructor
// in this package.
type Config struct {
	// BaseURL is the backend's HTTP endpoint (default: http://localhost:9200).
	BaseURL string

	// Username and Password enable basic authentication when set.
	Username string
	Password string

	// APIKey enables ApiKey authentication when set. Takes precedence
	// over basic authentication.
	APIKey string

	// Index is the logical index name (default: quaestor-chunks).
	Index string

	// Template is the schema template used at provisioning (default: default).
	Template string

	// Variables are the values substituted into the schema template.
	Variables domain.SchemaVariables

	// TextField, VectorField and MetadataField name the index fields
	// (defaults: content, embedding, metadata).
	TextField     string
	VectorField   string
	MetadataField string

	// RequestTimeout bounds point reads, writes and queries (default: 10s).
	RequestTimeout time.Duration

	// BulkTimeout bounds delete-by-query operations (default: 2m).
	BulkTimeout time.Duration

	// RetryTimeout bounds the single conflict retry (default: 5m).
	RetryTimeout time.Duration
}

// withDefaults returns a copy with zero-valued fields filled in.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Index == "" {
		c.Index = DefaultIndex
	}
	if c.Template == "" {
		c.Template = "default"
	}
	if c.TextField == "" {
		c.TextField = domain.DefaultTextField
	}
	if c.VectorField == "" {
		c.VectorField = domain.DefaultVectorField
	}
	if c.MetadataField == "" {
		c.MetadataField = domain.DefaultMetadataField
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.BulkTimeout == 0 {
		c.BulkTimeout = DefaultBulkTimeout
	}
	if c.RetryTimeout == 0 {
		c.RetryTimeout = DefaultRetryTimeout
	}
	return c
}

// Client is a minimal synchronous REST client for an
// Elasticsearch-compatible backend. It is safe for concurrent use and
// is the single long-lived handle shared by the Store, Retriever and
// Provisioner.
//
// The underlying http.Client carries no timeout of its own; callers
// bound each call with a context deadline derived from the operation
// class.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	password string
	apiKey   string
}

// NewClient creates a backend client from the configuration.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		http:     &http.Client{},
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		apiKey:   cfg.APIKey,
	}
}

// send performs one HTTP round trip. Transport failures wrap
// domain.ErrBackendUnavailable; non-2xx responses become *StatusError.
func (c *Client) send(ctx context.Context, method, path, contentType string, query url.Values, body []byte, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	} else if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return newStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do marshals the body (raw JSON passes through untouched) and sends it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case json.RawMessage:
		payload = b
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	return c.send(ctx, method, path, "application/json", query, payload, out)
}

// Ping validates the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/", nil, nil, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// IndexExists reports whether the named index exists.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	err := c.do(ctx, http.MethodHead, "/"+url.PathEscape(index), nil, nil, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// CreateIndex creates the named index with the given creation document.
func (c *Client) CreateIndex(ctx context.Context, index string, body json.RawMessage) error {
	return c.do(ctx, http.MethodPut, "/"+url.PathEscape(index), nil, body, nil)
}

// Mapping returns the index's mapped properties.
func (c *Client) Mapping(ctx context.Context, index string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(index)+"/_mapping", nil, nil, &out); err != nil {
		return nil, err
	}
	// Response shape: {"<index>": {"mappings": {"properties": {...}}}}.
	// The key may differ from the requested name when aliases are in play.
	for _, v := range out {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		mappings, ok := entry["mappings"].(map[string]any)
		if !ok {
			continue
		}
		props, _ := mappings["properties"].(map[string]any)
		return props, nil
	}
	return nil, fmt.Errorf("mapping response for %q had unexpected shape", index)
}

// PutMapping adds properties to the index mapping. The backend rejects
// changes to existing fields, which keeps this additive.
func (c *Client) PutMapping(ctx context.Context, index string, properties map[string]any) error {
	body := map[string]any{"properties": properties}
	return c.do(ctx, http.MethodPut, "/"+url.PathEscape(index)+"/_mapping", nil, body, nil)
}

// IndexDocument writes one document under the given id.
func (c *Client) IndexDocument(ctx context.Context, index, id string, doc any, refresh bool) error {
	query := url.Values{}
	if refresh {
		query.Set("refresh", "true")
	}
	path := "/" + url.PathEscape(index) + "/_doc/" + url.PathEscape(id)
	return c.do(ctx, http.MethodPut, path, query, doc, nil)
}

// DeleteDocument removes one document by id.
func (c *Client) DeleteDocument(ctx context.Context, index, id string, refresh bool) error {
	query := url.Values{}
	if refresh {
		query.Set("refresh", "true")
	}
	path := "/" + url.PathEscape(index) + "/_doc/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, query, nil, nil)
}

// searchResponse is the backend's search envelope.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// searchHit is a single search result.
type searchHit struct {
	ID     string         `json:"_id"`
	Score  float64        `json:"_score"`
	Source map[string]any `json:"_source"`
}

// Search runs a search request against the index.
func (c *Client) Search(ctx context.Context, index string, body any) (*searchResponse, error) {
	var out searchResponse
	if err := c.do(ctx, http.MethodPost, "/"+url.PathEscape(index)+"/_search", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// mgetResponse is the backend's multi-get envelope.
type mgetResponse struct {
	Docs []mgetDoc `json:"docs"`
}

// mgetDoc is a single multi-get entry.
type mgetDoc struct {
	ID     string         `json:"_id"`
	Found  bool           `json:"found"`
	Source map[string]any `json:"_source"`
}

// MultiGet fetches documents by id. Entries for missing ids come back
// with Found unset.
func (c *Client) MultiGet(ctx context.Context, index string, ids []string) ([]mgetDoc, error) {
	body := map[string]any{"ids": ids}
	var out mgetResponse
	if err := c.do(ctx, http.MethodPost, "/"+url.PathEscape(index)+"/_mget", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Docs, nil
}

// deleteByQueryOptions control a _delete_by_query call.
type deleteByQueryOptions struct {
	// Conflicts is the backend's conflict policy ("proceed" or "abort").
	Conflicts string

	// Refresh makes deletions visible before returning.
	Refresh bool

	// Timeout is the backend-side operation timeout.
	Timeout time.Duration

	// WaitForCompletion forces synchronous completion on the retry path.
	WaitForCompletion bool
}

// deleteByQueryResponse is the backend's deletion report.
type deleteByQueryResponse struct {
	Deleted          int64             `json:"deleted"`
	VersionConflicts int64             `json:"version_conflicts"`
	Failures         []json.RawMessage `json:"failures"`
}

// DeleteByQuery removes every document matching the query body.
func (c *Client) DeleteByQuery(ctx context.Context, index string, body any, opts deleteByQueryOptions) (*deleteByQueryResponse, error) {
	query := url.Values{}
	if opts.Conflicts != "" {
		query.Set("conflicts", opts.Conflicts)
	}
	if opts.Refresh {
		query.Set("refresh", "true")
	}
	if opts.Timeout > 0 {
		query.Set("timeout", durationParam(opts.Timeout))
	}
	if opts.WaitForCompletion {
		query.Set("wait_for_completion", "true")
	}

	var out deleteByQueryResponse
	path := "/" + url.PathEscape(index) + "/_delete_by_query"
	if err := c.do(ctx, http.MethodPost, path, query, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// bulkResponse is the backend's per-item bulk report.
type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

// bulkItem is one action's outcome within a bulk response.
type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
}

// Bulk submits a newline-delimited JSON action stream.
func (c *Client) Bulk(ctx context.Context, index string, ndjson []byte, refresh bool) (*bulkResponse, error) {
	query := url.Values{}
	if refresh {
		query.Set("refresh", "true")
	}
	var out bulkResponse
	path := "/" + url.PathEscape(index) + "/_bulk"
	if err := c.send(ctx, http.MethodPost, path, "application/x-ndjson", query, ndjson, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// durationParam renders a timeout in the backend's duration syntax.
func durationParam(d time.Duration) string {
	return fmt.Sprintf("%ds", int(d/time.Second))
}
