package driven

// ConfigStore persists application configuration as dot-notation keys
// ("service.base_url", "poll.interval_seconds"). Implementations own
// the storage format; the typed getters cover exactly the value kinds
// the settings carry: strings, whole seconds and rates.
type ConfigStore interface {
	// Get retrieves a raw value by key. The boolean reports whether the
	// key exists, letting callers distinguish "absent" from zero.
	Get(key string) (any, bool)

	// GetString retrieves a string value. Returns "" when the key is
	// absent or holds another type.
	GetString(key string) string

	// GetInt retrieves an integer value, narrowing the storage format's
	// native integer width. Returns 0 when the key is absent or holds
	// another type.
	GetInt(key string) int

	// GetFloat retrieves a floating-point value, widening stored
	// integers. Returns 0 when the key is absent.
	GetFloat(key string) float64

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path identifies the backing storage, for diagnostics.
	Path() string
}
