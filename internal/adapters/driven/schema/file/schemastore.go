package file

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
)

// Ensure SchemaStore implements the interface.
var _ driven.SchemaStore = (*SchemaStore)(nil)

// Template placeholders. The numeric ones substitute bare digits so
// they must sit in number position; the similarity one substitutes a
// quoted JSON string.
const (
	placeholderDimension  = "%DIMENSION%"
	placeholderShards     = "%SHARDS%"
	placeholderReplicas   = "%REPLICAS%"
	placeholderSimilarity = "%SIMILARITY%"
)

// templateExt is the file extension schema templates use on disk.
const templateExt = ".json"

// defaultTemplates contains the embedded schema templates.
//
//go:embed templates/*.json
var defaultTemplates embed.FS

// SchemaStore loads index schema templates from user-editable files on
// disk, with fallback to embedded defaults.
//
// The store uses lazy initialisation - the template directory and its
// default files are only created on first Load(), not in the
// constructor. This makes testing easier and avoids unexpected I/O.
type SchemaStore struct {
	mu       sync.RWMutex
	dir      string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

// NewSchemaStore creates a new file-based schema template store.
// If dir is empty, defaults to ~/.quaestor/templates/.
func NewSchemaStore(dir string) (*SchemaStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".quaestor", "templates")
	}

	return &SchemaStore{
		dir:   dir,
		cache: make(map[string]string),
	}, nil
}

// Load resolves the named template, substitutes the variables and
// parses the result into a structured schema. Zero-valued variables
// fall back to process-wide defaults before substitution.
func (s *SchemaStore) Load(name string, vars domain.SchemaVariables) (domain.IndexSchema, error) {
	text, err := s.template(name)
	if err != nil {
		return domain.IndexSchema{}, err
	}

	vars = vars.Merged(domain.DefaultSchemaVariables())
	rendered := substitute(text, vars)

	schema, err := parseSchema(name, vars, []byte(rendered))
	if err != nil {
		return domain.IndexSchema{}, fmt.Errorf("template %q: %w", name, err)
	}
	return schema, nil
}

// Validate reports whether the schema is structurally usable: valid
// JSON body, a text field, a dense vector field with explicit
// dimensions and a recognised similarity, and a metadata object mapping
// every required provenance property.
func (s *SchemaStore) Validate(schema domain.IndexSchema) bool {
	if len(schema.Body) == 0 || !json.Valid(schema.Body) {
		return false
	}
	if schema.TextField == "" || schema.VectorField == "" || schema.MetadataField == "" {
		return false
	}
	if schema.Dimension <= 0 {
		return false
	}
	if !schema.Similarity.IsValid() {
		return false
	}

	mapped := make(map[string]bool, len(schema.MetadataProperties))
	for _, p := range schema.MetadataProperties {
		mapped[p] = true
	}
	for _, p := range domain.RequiredMetadataProperties() {
		if !mapped[p] {
			return false
		}
	}
	return true
}

// List returns the names of all available templates, embedded and
// user-provided, sorted and de-duplicated.
func (s *SchemaStore) List() []string {
	seen := make(map[string]struct{})

	if entries, err := defaultTemplates.ReadDir("templates"); err == nil {
		for _, e := range entries {
			seen[strings.TrimSuffix(e.Name(), templateExt)] = struct{}{}
		}
	}
	if entries, err := os.ReadDir(s.dir); err == nil {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), templateExt) {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), templateExt)] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload clears the template cache, forcing fresh loads from disk.
func (s *SchemaStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the template directory path.
func (s *SchemaStore) Dir() string {
	return s.dir
}

// template returns the raw (unsubstituted) template text for the given
// name, materialising the directory on first use.
func (s *SchemaStore) template(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if text, err := embeddedTemplate(name); err == nil {
			return text, nil
		}
		return "", fmt.Errorf("schema store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if text, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return text, nil
	}
	s.mu.RUnlock()

	text, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if text, embErr := embeddedTemplate(name); embErr == nil {
			return text, nil
		}
		return "", fmt.Errorf("%w: no template named %q", domain.ErrNotFound, name)
	}

	// Cache the result (write lock). Double-check to avoid overwriting
	// a concurrent load.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		text = cached
	} else {
		s.cache[name] = text
	}
	s.mu.Unlock()

	return text, nil
}

// initialise creates the template directory and materialises the
// embedded defaults as editable files. Called once via sync.Once.
func (s *SchemaStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create template directory: %w", err)
		return
	}

	entries, err := defaultTemplates.ReadDir("templates")
	if err != nil {
		s.initErr = fmt.Errorf("read embedded templates: %w", err)
		return
	}
	for _, e := range entries {
		path := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		data, err := defaultTemplates.ReadFile("templates/" + e.Name())
		if err != nil {
			s.initErr = fmt.Errorf("read embedded template %q: %w", e.Name(), err)
			return
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			s.initErr = fmt.Errorf("create default template %q: %w", e.Name(), err)
			return
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a template from disk.
func (s *SchemaStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+templateExt))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// embeddedTemplate reads a template from the embedded set.
func embeddedTemplate(name string) (string, error) {
	data, err := defaultTemplates.ReadFile("templates/" + name + templateExt)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// createReadme writes a README file explaining the templates directory.
func (s *SchemaStore) createReadme() error {
	path := filepath.Join(s.dir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Quaestor Index Templates

This directory contains the index schema templates Quaestor provisions
search indices from. Each ` + "`.json`" + ` file is one template; the file name
(minus the extension) is the template name used in the configuration.

## Placeholders

Templates are substituted before being sent to the backend:

- ` + "`%DIMENSION%`" + ` - embedding vector length (number position)
- ` + "`%SHARDS%`" + ` - primary shard count (number position)
- ` + "`%REPLICAS%`" + ` - replica count (number position)
- ` + "`%SIMILARITY%`" + ` - vector distance function (replaced with a quoted string)

## Customisation

Edit a file or add your own. A valid template must map a text field, a
dense vector field using ` + "`%DIMENSION%`" + `, and a metadata object covering
source, page, chunk_id, timestamp, file_type and file_size. Changes
take effect the next time an index is provisioned.
`
	return os.WriteFile(path, []byte(content), 0600)
}

// substitute renders the template at the given variables.
func substitute(text string, vars domain.SchemaVariables) string {
	return strings.NewReplacer(
		placeholderDimension, strconv.Itoa(vars.Dimension),
		placeholderShards, strconv.Itoa(vars.Shards),
		placeholderReplicas, strconv.Itoa(vars.Replicas),
		placeholderSimilarity, strconv.Quote(vars.Similarity.String()),
	).Replace(text)
}

// parseSchema builds the structured view of a rendered template.
// Invalid JSON is reported as a malformed template; structural gaps
// (missing fields) are left for Validate to judge.
func parseSchema(name string, vars domain.SchemaVariables, rendered []byte) (domain.IndexSchema, error) {
	var body struct {
		Settings map[string]any `json:"settings"`
		Mappings struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(rendered, &body); err != nil {
		return domain.IndexSchema{}, fmt.Errorf("%w: %v", domain.ErrMalformedTemplate, err)
	}

	schema := domain.IndexSchema{
		Template:   name,
		Shards:     intSetting(body.Settings, "number_of_shards", vars.Shards),
		Replicas:   intSetting(body.Settings, "number_of_replicas", vars.Replicas),
		Similarity: vars.Similarity,
		Body:       rendered,
	}

	// Canonical field names win when present; otherwise the first
	// matching property in name order fills the role.
	names := make([]string, 0, len(body.Mappings.Properties))
	for n := range body.Mappings.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	ordered := append([]string{
		domain.DefaultTextField,
		domain.DefaultVectorField,
		domain.DefaultMetadataField,
	}, names...)

	for _, propName := range ordered {
		raw, ok := body.Mappings.Properties[propName]
		if !ok {
			continue
		}
		var def struct {
			Type       string                     `json:"type"`
			Dims       int                        `json:"dims"`
			Similarity string                     `json:"similarity"`
			Properties map[string]json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(raw, &def); err != nil {
			continue
		}

		switch {
		case def.Type == "text" && schema.TextField == "":
			schema.TextField = propName
		case def.Type == "dense_vector" && schema.VectorField == "":
			schema.VectorField = propName
			schema.Dimension = def.Dims
			if sim := domain.Similarity(def.Similarity); sim.IsValid() {
				schema.Similarity = sim
			}
		case (def.Type == "object" || (def.Type == "" && def.Properties != nil)) && schema.MetadataField == "":
			schema.MetadataField = propName
			for sub := range def.Properties {
				schema.MetadataProperties = append(schema.MetadataProperties, sub)
			}
			sort.Strings(schema.MetadataProperties)
		}
	}

	return schema, nil
}

// intSetting reads a numeric index setting, tolerating the backend's
// string form.
func intSetting(settings map[string]any, key string, fallback int) int {
	switch v := settings[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
