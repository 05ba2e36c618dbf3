package domain

import (
	"fmt"
	"strings"
	"time"
)

// StateBackend selects where FileRecords and scheduler history live.
type StateBackend string

// Available state backends.
const (
	// StateBackendMemory keeps state for the lifetime of the process only.
	StateBackendMemory StateBackend = "memory"

	// StateBackendSQLite persists state in <data_dir>/state.db.
	StateBackendSQLite StateBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StateBackend) IsValid() bool {
	switch b {
	case StateBackendMemory, StateBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StateBackend) String() string {
	return string(b)
}

// MonitorSettings configures the synchronization engine.
type MonitorSettings struct {
	// Interval between scheduled scans. Zero or negative disables scanning.
	Interval time.Duration

	// SourceDir is scanned for descriptor files. Defaults to DescriptorsDir.
	SourceDir string

	// DescriptorsDir receives rendered descriptors.
	DescriptorsDir string

	// SharedProvidersDir receives rendered provider configs.
	SharedProvidersDir string

	// Extension selects descriptor files by suffix.
	Extension string
}

// EffectiveSourceDir returns SourceDir, falling back to DescriptorsDir.
func (m MonitorSettings) EffectiveSourceDir() string {
	if m.SourceDir != "" {
		return m.SourceDir
	}
	return m.DescriptorsDir
}

// StateSettings configures FileRecord persistence.
type StateSettings struct {
	Backend StateBackend
	DataDir string
}

// ServerSettings configures the HTTP notification API.
type ServerSettings struct {
	// Addr is the listen address. Empty disables the API.
	Addr string

	// Metrics exposes /metrics when true.
	Metrics bool
}

// WatchSettings configures filesystem event driven processing.
type WatchSettings struct {
	Enabled bool

	// EventsPerSecond throttles event-triggered processing.
	EventsPerSecond int

	// Debounce coalesces bursts of events for one file.
	Debounce time.Duration
}

// LogSettings configures the logger.
type LogSettings struct {
	Verbose bool

	// Format is "text" or "json".
	Format string
}

// AppSettings holds all gateway-sync settings.
type AppSettings struct {
	Monitor MonitorSettings
	State   StateSettings
	Server  ServerSettings
	Watch   WatchSettings
	Log     LogSettings
}

// DefaultAppSettings returns sensible defaults.
// Directories are left empty and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Monitor: MonitorSettings{
			Interval:  10 * time.Second,
			Extension: DefaultDescriptorExtension,
		},
		State: StateSettings{
			Backend: StateBackendMemory,
		},
		Server: ServerSettings{
			Metrics: true,
		},
		Watch: WatchSettings{
			Enabled:         false,
			EventsPerSecond: 5,
			Debounce:        250 * time.Millisecond,
		},
		Log: LogSettings{
			Format: "text",
		},
	}
}

// Validate checks settings for consistency.
func (s *AppSettings) Validate() error {
	var problems []string
	if s.Monitor.DescriptorsDir == "" {
		problems = append(problems, "monitor.descriptors_dir is required")
	}
	if s.Monitor.SharedProvidersDir == "" {
		problems = append(problems, "monitor.shared_providers_dir is required")
	}
	if s.Monitor.Extension == "" {
		problems = append(problems, "monitor.extension must not be empty")
	}
	if !s.State.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown state.backend %q", s.State.Backend))
	}
	if s.State.Backend == StateBackendSQLite && s.State.DataDir == "" {
		problems = append(problems, "state.data_dir is required for the sqlite backend")
	}
	if s.Watch.Enabled && s.Watch.EventsPerSecond <= 0 {
		problems = append(problems, "watch.events_per_second must be positive")
	}
	if s.Log.Format != "text" && s.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("unknown log.format %q", s.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
