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
//   - DescriptorParser: Turns a descriptor file into provider configs and descriptors
//   - Renderer: Produces the canonical bytes of a provider config or descriptor
//   - SourceReader: Lists and reads descriptor files
//   - ArtifactStore: Reads and writes rendered artifacts
//   - FileRecordStore: Remembers which source files were fully processed
//   - ConfigStore: Flat dotted settings keys
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ScheduleStore: Periodic scan state and tick history. Without it, ticks are not recorded.
//   - SyncMetrics: Outcome counters. Without it, nothing is exported.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
