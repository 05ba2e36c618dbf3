package driven

// ConfigStore persists settings as flat dotted keys such as
// "monitor.interval_ms". Stored values are string, int64 or bool; the
// settings service owns conversion and defaults.
type ConfigStore interface {
	// Snapshot returns a copy of every stored key.
	Snapshot() map[string]any

	// Set stores one value and persists it.
	Set(key string, value any) error

	// SetMany stores several values with a single write.
	SetMany(values map[string]any) error

	// Delete removes a key. Removing a missing key is not an error.
	Delete(key string) error

	// Path identifies the backing storage.
	Path() string
}
