// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The synchronisation engine is split into:
//
//   - ChangeGate: write-if-different decision for one artifact
//   - SyncOrchestrator: process one file, scan all files, targeted resync
//   - Scheduler: periodic scan-all on a fixed interval
//   - ResyncListener: out-of-band notifications for one topology
//   - SettingsService: configuration keys to domain.AppSettings
package services
