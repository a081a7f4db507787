package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFile is the settings file name inside the config directory.
const configFile = "config.toml"

// ConfigStore is a TOML-backed implementation of driven.ConfigStore.
// On disk the settings are grouped into tables ([service], [transfer],
// [poll], ...); in memory they are held flat under dot-notation keys so
// lookups stay a single map access.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens the store under configDir, creating the
// directory if needed. An empty configDir means ~/.m365powerkit.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".m365powerkit")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, configFile),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a raw value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string value, "" for absent or mistyped keys.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer value. TOML decodes integers as int64;
// values set in-process may still be int.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// GetFloat retrieves a floating-point value, widening stored integers.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Set stores a value and persists the whole file immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the settings as sectioned TOML. Caller holds the lock.
func (s *ConfigStore) save() error {
	encoded, err := toml.Marshal(nest(s.data))
	if err != nil {
		return err
	}

	// The file can hold tenant and client identifiers; keep it private
	return os.WriteFile(s.filePath, encoded, 0600)
}

// Load reads the TOML file into the flat key map. A missing file is an
// empty configuration, not an error.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	s.data = make(map[string]any)
	flattenInto(s.data, "", decoded)
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenInto folds nested TOML tables into dot-notation keys:
// [service] base_url=... becomes "service.base_url".
func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(dst, full, table)
			continue
		}
		dst[full] = value
	}
}

// nest is the inverse of flattenInto: dot-notation keys become nested
// tables so the written file groups settings by section.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, value := range flat {
		node := root
		segments := strings.Split(key, ".")
		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[segment] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = value
	}
	return root
}
