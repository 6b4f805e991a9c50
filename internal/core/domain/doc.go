// Package domain defines the core business entities for Quaestor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: An embedded fragment of a source document
//   - Query: A retrieval request (text and/or embedding)
//   - RetrievalResult: Ranked chunks plus a degradation flag
//   - IndexSchema: The search index mapping in structured form
//   - ProvisionState: Index lifecycle state machine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
