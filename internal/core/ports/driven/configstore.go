package driven

// ConfigStore is the key/value view of the config file. Nested TOML tables
// are addressed with dot keys, e.g. "sources.kofic.api_key".
//
// Typed getters return the zero value when the key is missing or holds a
// different type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Keys returns every stored key, sorted.
	Keys() []string

	// Set stores the value and persists the file.
	Set(key string, value any) error
	Save() error

	// Load rereads the file, replacing the values in memory.
	Load() error

	// Path is the file location, for display.
	Path() string
}
