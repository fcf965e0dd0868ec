// Package domain defines the core business entities for Upfund.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes read from a source file
//   - Document: Extracted text for one source file
//   - Chunk: A bounded slice of a document's normalised text
//   - IndexEntry: The persisted unit held by the vector index
//   - RetrievedHit and Answer: Ephemeral query results
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
