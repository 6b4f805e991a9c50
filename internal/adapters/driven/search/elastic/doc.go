// Package elastic implements the search backend ports on an
// Elasticsearch-compatible cluster used as a combined vector and
// keyword store.
//
// The package provides four collaborating pieces over one shared HTTP
// client:
//
//   - Client: a minimal synchronous REST client (no official SDK, no
//     deferred response surfaces)
//   - Store: chunk writes, point reads, and single-mode queries
//   - Retriever: fused vector + keyword retrieval in one round trip
//   - Provisioner: index creation, dimension validation, and additive
//     mapping evolution
//
// The index is the single source of truth: nothing here caches chunks,
// and concurrent writers are mediated by the backend's own optimistic
// versioning. Every call carries an explicit timeout derived from its
// operation class.
package elastic
