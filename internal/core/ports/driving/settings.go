package driving

import "github.com/keaunsolNa/knock-crawling/internal/core/domain"

// SettingsService reads and updates the ingestion configuration.
type SettingsService interface {
	// Get returns the current configuration with defaults and environment
	// overrides applied.
	Get() (*domain.IngestConfig, error)

	// Set stores a single configuration key.
	Set(key string, value any) error

	// Path returns the configuration file path.
	Path() string
}
