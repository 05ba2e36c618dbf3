// Package domain defines the core business entities for gateway-sync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceFile: A descriptor file discovered in the source directory
//   - ParseResult: Provider configs and descriptors extracted from one file
//   - Artifact: A canonical rendering destined for an output directory
//   - FileRecord: What the engine last knew about a processed source file
//   - ResyncRequest: An out-of-band request to resynchronise one topology
//   - ScanSchedule, Tick: Periodic scan state and the outcome of each run
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
