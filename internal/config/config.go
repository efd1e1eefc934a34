package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the chemsearch API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Data    DataConfig    `yaml:"data"`
	Search  SearchConfig  `yaml:"search"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig holds the embedded store settings.
type StorageConfig struct {
	Path      string `yaml:"path"`
	InMemory  bool   `yaml:"in_memory"`
	KeyPrefix string `yaml:"key_prefix"`
}

// DataConfig locates the searchable record corpus.
type DataConfig struct {
	RecordsPath string `yaml:"records_path"`
}

// SearchConfig holds scoring and pagination settings.
type SearchConfig struct {
	Threshold float64            `yaml:"threshold"`
	Distance  int                `yaml:"distance"`
	Weights   map[string]float64 `yaml:"weights"`
}

// SessionConfig holds session and suggestion settings.
type SessionConfig struct {
	MaxHistory     int `yaml:"max_history"`
	MaxBookmarks   int `yaml:"max_bookmarks"`
	MaxSuggestions int `yaml:"max_suggestions"`
	DebounceMS     int `yaml:"debounce_ms"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "chemsearch"
	}
	if c.Data.RecordsPath == "" {
		c.Data.RecordsPath = filepath.Join("data", "records.json")
	}
	if c.Search.Threshold <= 0 {
		c.Search.Threshold = 0.3
	}
	if c.Search.Distance <= 0 {
		c.Search.Distance = 2
	}
	if c.Session.MaxHistory <= 0 {
		c.Session.MaxHistory = 50
	}
	if c.Session.MaxBookmarks <= 0 {
		c.Session.MaxBookmarks = 100
	}
	if c.Session.MaxSuggestions <= 0 {
		c.Session.MaxSuggestions = 10
	}
	if c.Session.DebounceMS <= 0 {
		c.Session.DebounceMS = 300
	}
}

// Validate checks the configuration for correctness. Weight field names are
// validated against the field registry at composition time, not here.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required unless storage.in_memory is set")
	}
	if c.Search.Threshold >= 1 {
		return fmt.Errorf("search.threshold must be below 1, got %g", c.Search.Threshold)
	}
	for field, w := range c.Search.Weights {
		if w <= 0 || w > 1 {
			return fmt.Errorf("search.weights.%s must be in (0,1], got %g", field, w)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
