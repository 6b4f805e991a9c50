// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorStore: Chunk persistence and single-mode queries on the search backend
//   - HybridSearcher: Single round-trip fused vector + keyword retrieval
//   - IndexLifecycle: Bulk delete-by-source and clear-all operations
//   - IndexProvisioner: Index creation, validation, and mapping evolution
//   - SchemaStore: Index schema templates with variable substitution
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TranscriptStore: Retrieval exchange logging. Without it, queries
//     simply leave no trace.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
