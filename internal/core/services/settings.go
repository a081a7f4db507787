package services

import (
	"fmt"
	"time"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServiceBaseURL   = "service.base_url"
	keyServiceTenantID  = "service.tenant_id"
	keyServiceClientID  = "service.client_id"
	keyServiceScope     = "service.scope"
	keyServiceRate      = "service.requests_per_second"
	keyTransferToolPath = "transfer.tool_path"
	keyTransferBaseDir  = "transfer.base_dir"
	keyPollInterval     = "poll.interval_seconds"
	keyPollTimeout      = "poll.timeout_seconds"
	keyExtractNaming    = "extraction.naming_mode"
	keyExtractSettle    = "extraction.settle_seconds"
	keyExtractTrash     = "extraction.trash_folder"
	keyStorageHistory   = "storage.history_path"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing keys fall back to
// the defaults; the client secret is never read from the store.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Service: domain.ServiceSettings{
			BaseURL:           s.configStore.GetString(keyServiceBaseURL),
			TenantID:          s.configStore.GetString(keyServiceTenantID),
			ClientID:          s.configStore.GetString(keyServiceClientID),
			Scope:             s.getString(keyServiceScope, defaults.Service.Scope),
			RequestsPerSecond: s.getFloat(keyServiceRate, defaults.Service.RequestsPerSecond),
		},
		Transfer: domain.TransferSettings{
			ToolPath: s.getString(keyTransferToolPath, defaults.Transfer.ToolPath),
			BaseDir:  s.configStore.GetString(keyTransferBaseDir),
		},
		Poll: domain.PollSettings{
			Interval: s.getSeconds(keyPollInterval, defaults.Poll.Interval),
			Timeout:  s.getSeconds(keyPollTimeout, defaults.Poll.Timeout),
		},
		Extraction: domain.ExtractionSettings{
			NamingMode:  s.getNamingMode(defaults.Extraction.NamingMode),
			SettleDelay: s.getSeconds(keyExtractSettle, defaults.Extraction.SettleDelay),
			TrashFolder: s.getString(keyExtractTrash, defaults.Extraction.TrashFolder),
		},
		Storage: domain.StorageSettings{
			HistoryPath: s.configStore.GetString(keyStorageHistory),
		},
	}

	return settings, nil
}

// Save persists application settings. The client secret is deliberately
// not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keyServiceBaseURL, settings.Service.BaseURL},
		{keyServiceTenantID, settings.Service.TenantID},
		{keyServiceClientID, settings.Service.ClientID},
		{keyServiceScope, settings.Service.Scope},
		{keyServiceRate, settings.Service.RequestsPerSecond},
		{keyTransferToolPath, settings.Transfer.ToolPath},
		{keyTransferBaseDir, settings.Transfer.BaseDir},
		{keyPollInterval, int(settings.Poll.Interval / time.Second)},
		{keyPollTimeout, int(settings.Poll.Timeout / time.Second)},
		{keyExtractNaming, settings.Extraction.NamingMode.String()},
		{keyExtractSettle, int(settings.Extraction.SettleDelay / time.Second)},
		{keyExtractTrash, settings.Extraction.TrashFolder},
		{keyStorageHistory, settings.Storage.HistoryPath},
	}

	for _, pair := range pairs {
		if err := s.configStore.Set(pair.key, pair.value); err != nil {
			return fmt.Errorf("save %s: %w", pair.key, err)
		}
	}
	return nil
}

// SetService configures the remote service connection.
func (s *SettingsService) SetService(baseURL, tenantID, clientID string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Service.BaseURL = baseURL
	settings.Service.TenantID = tenantID
	settings.Service.ClientID = clientID

	if !settings.Service.IsConfigured() {
		return fmt.Errorf("%w: base URL, tenant ID and client ID are all required", domain.ErrInvalidInput)
	}
	return s.Save(settings)
}

// SetTransfer configures the download tool and output base directory.
func (s *SettingsService) SetTransfer(toolPath, baseDir string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if toolPath != "" {
		settings.Transfer.ToolPath = toolPath
	}
	if baseDir != "" {
		settings.Transfer.BaseDir = baseDir
	}
	return s.Save(settings)
}

// Validate checks that settings are usable for a full pipeline run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Service.IsConfigured() {
		return fmt.Errorf("remote service is not configured; run settings first")
	}
	if settings.Transfer.BaseDir == "" {
		return fmt.Errorf("transfer base directory is not configured")
	}
	if !settings.Extraction.NamingMode.IsValid() {
		return fmt.Errorf("invalid naming mode: %s", settings.Extraction.NamingMode)
	}
	if settings.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getSeconds reads a whole-second duration. Negative values are
// treated as corrupt and fall back; zero is meaningful (a poll timeout
// of 0 waits forever) and is kept.
func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	secs := s.configStore.GetInt(key)
	if secs < 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func (s *SettingsService) getNamingMode(defaultVal domain.NamingMode) domain.NamingMode {
	val := s.configStore.GetString(keyExtractNaming)
	if val == "" {
		return defaultVal
	}
	mode := domain.NamingMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
