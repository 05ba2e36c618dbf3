package driving

import "github.com/custodia-labs/gateway-sync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, applying defaults for unset keys.
	Get() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error

	// Set stores a single key after checking it is a known setting.
	Set(key, value string) error

	// Reset removes a stored key so its default applies again.
	Reset(key string) error

	// Keys returns every supported configuration key.
	Keys() []string

	// Location describes where settings are stored.
	Location() string
}
