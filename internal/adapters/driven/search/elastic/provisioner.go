package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Provisioner implements the interface.
var _ driven.IndexProvisioner = (*Provisioner)(nil)

// Provisioner owns the lifecycle of one logical index: creation on
// first use, dimension validation against the embedding model, and
// additive mapping evolution. An instance is the exclusive owner of its
// index name.
type Provisioner struct {
	client         *Client
	schemas        driven.SchemaStore
	embedder       driven.EmbeddingService
	index          string
	template       string
	vars           domain.SchemaVariables
	fields         fieldNames
	requestTimeout time.Duration

	mu    sync.RWMutex
	state domain.ProvisionState
}

// NewProvisioner creates a provisioner over the shared client.
func NewProvisioner(client *Client, schemas driven.SchemaStore, embedder driven.EmbeddingService, cfg Config) *Provisioner {
	cfg = cfg.withDefaults()
	return &Provisioner{
		client:         client,
		schemas:        schemas,
		embedder:       embedder,
		index:          cfg.Index,
		template:       cfg.Template,
		vars:           cfg.Variables,
		fields:         newFieldNames(cfg),
		requestTimeout: cfg.RequestTimeout,
		state:          domain.ProvisionAbsent,
	}
}

// State reports the index's current lifecycle state.
func (p *Provisioner) State() domain.ProvisionState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Provisioner) setState(state domain.ProvisionState) {
	p.mu.Lock()
	old := p.state
	p.state = state
	p.mu.Unlock()
	if old != state {
		logger.Info("index %q: %s -> %s", p.index, old, state)
	}
}

// EnsureIndex brings the index to a usable state. Creation uses the
// configured schema template; an unusable template degrades to the
// minimal hardcoded schema rather than aborting start-up. A live index
// whose vector dimension disagrees with the embedding model is a
// terminal conflict.
func (p *Provisioner) EnsureIndex(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	exists, err := p.client.IndexExists(cctx, p.index)
	cancel()
	if err != nil {
		return fmt.Errorf("check index %q: %w", p.index, err)
	}

	dimension := p.dimension()

	if !exists {
		return p.create(ctx, dimension)
	}

	cctx, cancel = context.WithTimeout(ctx, p.requestTimeout)
	live, err := p.client.Mapping(cctx, p.index)
	cancel()
	if err != nil {
		return fmt.Errorf("fetch mapping for %q: %w", p.index, err)
	}

	if liveDims, mapped := mappingDimension(live, p.fields.vector); mapped && liveDims != dimension {
		p.setState(domain.ProvisionDimensionConflict)
		return fmt.Errorf("index %q maps %d-dimensional vectors but model %q produces %d: %w",
			p.index, liveDims, p.embedder.ModelName(), dimension, domain.ErrDimensionConflict)
	}

	p.setState(domain.ProvisionLive)
	p.evolve(ctx, live, dimension)
	return nil
}

// dimension resolves the vector dimension, letting the embedding model
// win over the configured value. The schema follows the model, never
// the reverse.
func (p *Provisioner) dimension() int {
	configured := p.vars.Dimension
	model := p.embedder.Dimensions()
	if model <= 0 {
		return configured
	}
	if configured > 0 && configured != model {
		logger.Warn("configured dimension %d disagrees with model %q (%d); using the model's",
			configured, p.embedder.ModelName(), model)
	}
	return model
}

// create provisions a fresh index.
func (p *Provisioner) create(ctx context.Context, dimension int) error {
	p.setState(domain.ProvisionProvisioning)

	schema := p.loadSchema(dimension)

	cctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	err := p.client.CreateIndex(cctx, p.index, schema.Body)
	cancel()
	if err != nil {
		p.setState(domain.ProvisionAbsent)
		return fmt.Errorf("create index %q: %w", p.index, err)
	}

	p.setState(domain.ProvisionLive)
	logger.Info("created index %q (template %q, dimension %d)", p.index, schema.Template, dimension)
	return nil
}

// loadSchema resolves the configured template at the given dimension,
// degrading to the minimal schema when the template cannot be loaded or
// fails validation.
func (p *Provisioner) loadSchema(dimension int) domain.IndexSchema {
	vars := p.vars
	vars.Dimension = dimension

	schema, err := p.schemas.Load(p.template, vars)
	if err != nil {
		logger.Warn("load schema template %q: %v; using minimal schema", p.template, err)
		return p.minimalSchema(dimension)
	}
	if !p.schemas.Validate(schema) {
		logger.Warn("schema template %q failed validation; using minimal schema", p.template)
		return p.minimalSchema(dimension)
	}
	return schema
}

// minimalSchema is the last-resort index schema: one shard, no
// replicas, standard analysis, and a dynamic metadata object.
func (p *Provisioner) minimalSchema(dimension int) domain.IndexSchema {
	similarity := p.vars.Similarity
	if !similarity.IsValid() {
		similarity = domain.SimilarityCosine
	}

	body := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				p.fields.text: map[string]any{
					"type": "text",
				},
				p.fields.vector: map[string]any{
					"type":       "dense_vector",
					"dims":       dimension,
					"index":      true,
					"similarity": similarity.String(),
				},
				p.fields.metadata: map[string]any{
					"type":    "object",
					"dynamic": true,
				},
			},
		},
	}
	raw, _ := json.Marshal(body)

	return domain.IndexSchema{
		Template:      "minimal",
		Dimension:     dimension,
		Shards:        1,
		Replicas:      0,
		Similarity:    similarity,
		TextField:     p.fields.text,
		VectorField:   p.fields.vector,
		MetadataField: p.fields.metadata,
		Body:          raw,
	}
}

// evolve applies additive-only mapping updates: fields the current
// template defines that the live index lacks. Existing fields are never
// altered, and failures are logged rather than returned.
func (p *Provisioner) evolve(ctx context.Context, live map[string]any, dimension int) {
	vars := p.vars
	vars.Dimension = dimension

	schema, err := p.schemas.Load(p.template, vars)
	if err != nil || !p.schemas.Validate(schema) {
		logger.Debug("skipping mapping evolution: template %q unusable", p.template)
		return
	}

	target, err := schemaProperties(schema)
	if err != nil {
		logger.Debug("skipping mapping evolution: %v", err)
		return
	}

	missing := missingProperties(target, live, p.fields.metadata)
	if len(missing) == 0 {
		return
	}

	p.setState(domain.ProvisionEvolving)
	defer p.setState(domain.ProvisionLive)

	cctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	err = p.client.PutMapping(cctx, p.index, missing)
	cancel()
	if err != nil {
		logger.Warn("mapping evolution for %q failed (index stays usable): %v", p.index, err)
		return
	}
	logger.Info("added %d field(s) to index %q mapping", len(missing), p.index)
}

// schemaProperties extracts mappings.properties from a schema body.
func schemaProperties(schema domain.IndexSchema) (map[string]any, error) {
	var body struct {
		Mappings struct {
			Properties map[string]any `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(schema.Body, &body); err != nil {
		return nil, fmt.Errorf("parse schema body: %w", err)
	}
	if body.Mappings.Properties == nil {
		return nil, fmt.Errorf("schema %q declares no properties", schema.Template)
	}
	return body.Mappings.Properties, nil
}

// missingProperties diffs the target properties against the live
// mapping. Top-level fields are adopted wholesale; the metadata object
// is diffed one sub-property at a time so existing sub-fields stay
// untouched.
func missingProperties(target, live map[string]any, metadataField string) map[string]any {
	missing := map[string]any{}
	for name, def := range target {
		liveDef, exists := live[name]
		if !exists {
			missing[name] = def
			continue
		}
		if name != metadataField {
			continue
		}

		subMissing := map[string]any{}
		liveSub := subProperties(liveDef)
		for sub, subDef := range subProperties(def) {
			if _, ok := liveSub[sub]; !ok {
				subMissing[sub] = subDef
			}
		}
		if len(subMissing) > 0 {
			missing[name] = map[string]any{
				"type":       "object",
				"properties": subMissing,
			}
		}
	}
	return missing
}

// subProperties extracts the nested properties of an object field.
func subProperties(def any) map[string]any {
	m, ok := def.(map[string]any)
	if !ok {
		return nil
	}
	props, _ := m["properties"].(map[string]any)
	return props
}

// mappingDimension reads the dense vector field's dims from live
// properties. The second return reports whether the field is mapped at
// all; an unmapped vector field is handled by evolution, not treated as
// a conflict.
func mappingDimension(properties map[string]any, vectorField string) (int, bool) {
	def, ok := properties[vectorField].(map[string]any)
	if !ok {
		return 0, false
	}
	dims, ok := def["dims"].(float64)
	if !ok {
		return 0, false
	}
	return int(dims), true
}
