package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. Adapters classify raw
// backend responses into these sentinels so that retry and fallback
// policies can key on errors.Is instead of message matching.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable indicates the search backend could not be
	// reached before any response arrived.
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or not reachable. Semantic retrieval is disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Schema and provisioning errors.

	// ErrMalformedTemplate indicates a schema template did not produce
	// valid JSON after variable substitution.
	ErrMalformedTemplate = errors.New("malformed schema template")

	// ErrSchemaInvalid indicates a schema is structurally unusable
	// (missing vector field, dims, or required metadata properties).
	ErrSchemaInvalid = errors.New("schema invalid")

	// ErrDimensionConflict indicates the live index's vector dimension
	// disagrees with the embedding model. Terminal; requires manual
	// reindexing.
	ErrDimensionConflict = errors.New("index dimension conflicts with embedding model")

	// Write and retrieval errors.

	// ErrWriteConflict indicates the backend rejected a write due to
	// concurrent version changes. Recoverable; policy is proceed and
	// count.
	ErrWriteConflict = errors.New("write conflict")

	// ErrPartialWrite indicates a bulk operation completed for only a
	// subset of its documents.
	ErrPartialWrite = errors.New("partial write")

	// ErrFusionFailed indicates the combined vector and keyword request
	// failed and retrieval fell back to vector-only search.
	ErrFusionFailed = errors.New("hybrid fusion failed")
)
