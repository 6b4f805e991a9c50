package domain

import "encoding/json"

// Similarity defines the vector distance function used by the index.
type Similarity string

// Available similarity functions.
const (
	// SimilarityCosine ranks by cosine similarity. The safe default for
	// models that do not document their normalisation.
	SimilarityCosine Similarity = "cosine"

	// SimilarityDotProduct ranks by dot product. Requires normalised
	// embeddings.
	SimilarityDotProduct Similarity = "dot_product"

	// SimilarityL2 ranks by inverse Euclidean distance.
	SimilarityL2 Similarity = "l2_norm"
)

// IsValid returns true if the similarity function is recognised.
func (s Similarity) IsValid() bool {
	switch s {
	case SimilarityCosine, SimilarityDotProduct, SimilarityL2:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Similarity) String() string {
	return string(s)
}

// Description returns a human-readable description of the function.
func (s Similarity) Description() string {
	switch s {
	case SimilarityCosine:
		return "Cosine (angle between vectors)"
	case SimilarityDotProduct:
		return "Dot product (requires normalised vectors)"
	case SimilarityL2:
		return "L2 norm (Euclidean distance)"
	default:
		return unknownDescription
	}
}

// AllSimilarities returns all available similarity functions.
func AllSimilarities() []Similarity {
	return []Similarity{
		SimilarityCosine,
		SimilarityDotProduct,
		SimilarityL2,
	}
}

// SchemaVariables are the values substituted into a schema template.
type SchemaVariables struct {
	// Dimension is the embedding vector length.
	Dimension int

	// Shards is the index's primary shard count.
	Shards int

	// Replicas is the replica count per shard.
	Replicas int

	// Similarity is the vector distance function.
	Similarity Similarity
}

// DefaultSchemaVariables returns template variables with sensible defaults
// for a single-node backend.
func DefaultSchemaVariables() SchemaVariables {
	return SchemaVariables{
		Dimension:  768, // nomic-embed-text default
		Shards:     1,
		Replicas:   0,
		Similarity: SimilarityCosine,
	}
}

// Merged returns a copy with zero-valued fields replaced by defaults.
func (v SchemaVariables) Merged(defaults SchemaVariables) SchemaVariables {
	if v.Dimension <= 0 {
		v.Dimension = defaults.Dimension
	}
	if v.Shards <= 0 {
		v.Shards = defaults.Shards
	}
	if v.Replicas < 0 {
		v.Replicas = defaults.Replicas
	}
	if !v.Similarity.IsValid() {
		v.Similarity = defaults.Similarity
	}
	return v
}

// Default index field names.
const (
	// DefaultTextField holds the chunk text.
	DefaultTextField = "content"

	// DefaultVectorField holds the chunk embedding.
	DefaultVectorField = "embedding"

	// DefaultMetadataField groups the chunk's provenance properties.
	DefaultMetadataField = "metadata"
)

// RequiredMetadataProperties returns the metadata sub-fields a valid
// schema must map.
func RequiredMetadataProperties() []string {
	return []string{
		MetaSource,
		MetaPage,
		MetaChunkID,
		MetaTimestamp,
		MetaFileType,
		MetaFileSize,
	}
}

// IndexSchema is the structured view of a search index mapping, parsed
// from a substituted schema template.
type IndexSchema struct {
	// Template is the name of the template this schema came from.
	Template string

	// Dimension is the dense vector length the mapping declares.
	Dimension int

	// Shards is the primary shard count.
	Shards int

	// Replicas is the replica count per shard.
	Replicas int

	// Similarity is the vector distance function.
	Similarity Similarity

	// TextField is the name of the full-text field.
	TextField string

	// VectorField is the name of the dense vector field.
	VectorField string

	// MetadataField is the name of the metadata object field.
	MetadataField string

	// MetadataProperties lists the mapped metadata sub-fields.
	MetadataProperties []string

	// Body is the complete index-creation document sent to the backend.
	Body json.RawMessage
}
