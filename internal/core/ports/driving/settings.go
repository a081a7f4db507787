package driving

import "github.com/markz0r/M365PowerKit/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetService configures the remote service connection.
	SetService(baseURL, tenantID, clientID string) error

	// SetTransfer configures the download tool and output base directory.
	SetTransfer(toolPath, baseDir string) error

	// Validate checks that settings are usable for a full pipeline run.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
