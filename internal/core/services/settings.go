package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyMonitorIntervalMS      = "monitor.interval_ms"
	KeyMonitorSourceDir       = "monitor.source_dir"
	KeyMonitorDescriptorsDir  = "monitor.descriptors_dir"
	KeyMonitorSharedProviders = "monitor.shared_providers_dir"
	KeyMonitorExtension       = "monitor.extension"
	KeyStateBackend           = "state.backend"
	KeyStateDataDir           = "state.data_dir"
	KeyServerAddr             = "server.addr"
	KeyServerMetrics          = "server.metrics"
	KeyWatchEnabled           = "watch.enabled"
	KeyWatchEventsPerSecond   = "watch.events_per_second"
	KeyWatchDebounceMS        = "watch.debounce_ms"
	KeyLogVerbose             = "log.verbose"
	KeyLogFormat              = "log.format"
)

type keyType int

const (
	keyString keyType = iota
	keyInt
	keyBool
)

var settingKeys = map[string]keyType{
	KeyMonitorIntervalMS:      keyInt,
	KeyMonitorSourceDir:       keyString,
	KeyMonitorDescriptorsDir:  keyString,
	KeyMonitorSharedProviders: keyString,
	KeyMonitorExtension:       keyString,
	KeyStateBackend:           keyString,
	KeyStateDataDir:           keyString,
	KeyServerAddr:             keyString,
	KeyServerMetrics:          keyBool,
	KeyWatchEnabled:           keyBool,
	KeyWatchEventsPerSecond:   keyInt,
	KeyWatchDebounceMS:        keyInt,
	KeyLogVerbose:             keyBool,
	KeyLogFormat:              keyString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get reads the stored settings over the defaults. Values of the wrong
// type fall back to the default; so does an unknown state backend.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	v := settingValues(s.configStore.Snapshot())

	settings := &domain.AppSettings{
		Monitor: domain.MonitorSettings{
			Interval:           v.millis(KeyMonitorIntervalMS, defaults.Monitor.Interval),
			SourceDir:          v.str(KeyMonitorSourceDir, ""),
			DescriptorsDir:     v.str(KeyMonitorDescriptorsDir, ""),
			SharedProvidersDir: v.str(KeyMonitorSharedProviders, ""),
			Extension:          v.str(KeyMonitorExtension, defaults.Monitor.Extension),
		},
		State: domain.StateSettings{
			Backend: domain.StateBackend(v.str(KeyStateBackend, defaults.State.Backend.String())),
			DataDir: v.str(KeyStateDataDir, ""),
		},
		Server: domain.ServerSettings{
			Addr:    v.str(KeyServerAddr, ""),
			Metrics: v.boolean(KeyServerMetrics, defaults.Server.Metrics),
		},
		Watch: domain.WatchSettings{
			Enabled:         v.boolean(KeyWatchEnabled, defaults.Watch.Enabled),
			EventsPerSecond: int(v.integer(KeyWatchEventsPerSecond, int64(defaults.Watch.EventsPerSecond))),
			Debounce:        v.millis(KeyWatchDebounceMS, defaults.Watch.Debounce),
		},
		Log: domain.LogSettings{
			Verbose: v.boolean(KeyLogVerbose, defaults.Log.Verbose),
			Format:  v.str(KeyLogFormat, defaults.Log.Format),
		},
	}

	if !settings.State.Backend.IsValid() {
		settings.State.Backend = defaults.State.Backend
	}
	return settings, nil
}

// Save persists every setting in one write.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		KeyMonitorIntervalMS:      settings.Monitor.Interval.Milliseconds(),
		KeyMonitorSourceDir:       settings.Monitor.SourceDir,
		KeyMonitorDescriptorsDir:  settings.Monitor.DescriptorsDir,
		KeyMonitorSharedProviders: settings.Monitor.SharedProvidersDir,
		KeyMonitorExtension:       settings.Monitor.Extension,
		KeyStateBackend:           settings.State.Backend.String(),
		KeyStateDataDir:           settings.State.DataDir,
		KeyServerAddr:             settings.Server.Addr,
		KeyServerMetrics:          settings.Server.Metrics,
		KeyWatchEnabled:           settings.Watch.Enabled,
		KeyWatchEventsPerSecond:   int64(settings.Watch.EventsPerSecond),
		KeyWatchDebounceMS:        settings.Watch.Debounce.Milliseconds(),
		KeyLogVerbose:             settings.Log.Verbose,
		KeyLogFormat:              settings.Log.Format,
	}
	if err := s.configStore.SetMany(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set stores a single key, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kt, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch kt {
	case keyInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %w", domain.ErrInvalidInput, key, err)
		}
		stored = n
	case keyBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects a boolean: %w", domain.ErrInvalidInput, key, err)
		}
		stored = b
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Reset removes a stored key so its default applies again.
func (s *SettingsService) Reset(key string) error {
	if _, ok := settingKeys[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// Keys returns every supported configuration key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Location returns the config store path.
func (s *SettingsService) Location() string {
	return s.configStore.Path()
}

// settingValues reads typed values out of a config snapshot. Hand-edited
// files may quote numbers and booleans, so strings are parsed too.
type settingValues map[string]any

func (v settingValues) str(key, def string) string {
	if s, ok := v[key].(string); ok && s != "" {
		return s
	}
	return def
}

func (v settingValues) integer(key string, def int64) int64 {
	switch n := v[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func (v settingValues) boolean(key string, def bool) bool {
	switch b := v[key].(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// millis reads an integer millisecond key as a duration. Zero or less is
// kept as stored: it disables periodic scanning.
func (v settingValues) millis(key string, def time.Duration) time.Duration {
	return time.Duration(v.integer(key, def.Milliseconds())) * time.Millisecond
}
