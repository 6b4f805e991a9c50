package driven

import "github.com/custodia-labs/quaestor/internal/core/domain"

// SchemaStore resolves named index schema templates.
// Implementations ship embedded defaults and may let users override
// them with files on disk.
type SchemaStore interface {
	// Load resolves the named template, substitutes the variables
	// (falling back per-variable to process-wide defaults), and parses
	// the result. The returned error wraps domain.ErrMalformedTemplate
	// when substitution does not yield valid JSON, and domain.ErrNotFound
	// when no template with that name exists.
	Load(name string, vars domain.SchemaVariables) (domain.IndexSchema, error)

	// Validate reports whether the schema is structurally usable:
	// a dense vector field with explicit dimensions, a text field, and
	// a metadata object covering the required provenance properties.
	// It returns false rather than an error.
	Validate(schema domain.IndexSchema) bool

	// List returns the names of the available templates, sorted.
	// Empty slice when none are available.
	List() []string
}
