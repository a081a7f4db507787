package domain

import "time"

// ServiceSettings holds the connection to the remote search/export
// service.
type ServiceSettings struct {
	// BaseURL is the service API root, e.g. https://compliance.example.com/api.
	BaseURL string

	// TenantID is the directory tenant used for token acquisition.
	TenantID string

	// ClientID is the application registration used for token acquisition.
	ClientID string

	// ClientSecret authorizes the client credential grant. It is never
	// written to the config file; it comes from the environment or an
	// interactive prompt.
	ClientSecret string

	// Scope is the OAuth2 scope requested for service tokens.
	Scope string

	// RequestsPerSecond caps outbound API calls. Zero disables the cap.
	RequestsPerSecond float64
}

// IsConfigured returns true if the service connection is set up.
func (s ServiceSettings) IsConfigured() bool {
	return s.BaseURL != "" && s.TenantID != "" && s.ClientID != ""
}

// TransferSettings holds the external transfer tool configuration.
type TransferSettings struct {
	// ToolPath is the transfer executable. Resolved against PATH when
	// not absolute.
	ToolPath string

	// BaseDir is the root under which each run creates its
	// <BaseDir>/<jobName>/ working directory.
	BaseDir string
}

// PollSettings controls the sleep-then-recheck loops. The interval is
// constant; no backoff is applied.
type PollSettings struct {
	// Interval is the delay between status reads.
	Interval time.Duration

	// Timeout bounds a single wait. Zero means wait forever, matching
	// the reference behaviour; set it to arm a safety net.
	Timeout time.Duration
}

// ExtractionSettings holds archive traversal configuration.
type ExtractionSettings struct {
	// NamingMode selects the attachment naming policy.
	NamingMode NamingMode

	// SettleDelay is the pause after mount and unmount operations while
	// the mail client indexes the archive.
	SettleDelay time.Duration

	// TrashFolder is the folder name skipped by document extraction.
	TrashFolder string
}

// StorageSettings holds the local run-history database location.
type StorageSettings struct {
	// HistoryPath is the sqlite database file recording past runs.
	HistoryPath string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Service holds the remote service connection.
	Service ServiceSettings

	// Transfer holds the download tool configuration.
	Transfer TransferSettings

	// Poll holds the shared polling behaviour.
	Poll PollSettings

	// Extraction holds archive traversal configuration.
	Extraction ExtractionSettings

	// Storage holds local persistence locations.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with the reference defaults. The
// service connection is left unconfigured; users must supply tenant and
// client identity before the remote stages can run.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Service: ServiceSettings{
			Scope:             "https://graph.microsoft.com/.default",
			RequestsPerSecond: 2,
		},
		Transfer: TransferSettings{
			ToolPath: "azcopy",
		},
		Poll: PollSettings{
			Interval: 5 * time.Second,
		},
		Extraction: ExtractionSettings{
			NamingMode:  NameBySubject,
			SettleDelay: 10 * time.Second,
			TrashFolder: "Deleted Items",
		},
	}
}
