// Package domain defines the core types of the kbyv cross-referencing engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entity: A person mention extracted from one source database
//   - Candidate: A person appearing on a ballot
//   - ConfirmedLink: A candidate/entity pair the oracle confirmed as one person
//   - CorroborationVerdict: The distinct-source count and confidence tier for a candidate
//   - ClassifiedConnection: A corroborated connection with its level and citations
//   - Publication: The terminal per-candidate mapping consumed by the site generator
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
