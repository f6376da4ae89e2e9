package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	DatabaseDriver string        `mapstructure:"database_driver"` // sqlite, postgres
	DatabaseDSN    string        `mapstructure:"database_dsn"`
	StoreBackend   string        `mapstructure:"store_backend"` // sql, memory
	ServerAddr     string        `mapstructure:"server_addr"`
	LogLevel       string        `mapstructure:"log_level"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	CoalesceLoads  bool          `mapstructure:"coalesce_loads"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

const (
	StoreSQL    = "sql"
	StoreMemory = "memory"

	// HomeEnv overrides the ~/.jobtracker directory
	HomeEnv = "JOBTRACKER_HOME"
)

var defaults = map[string]any{
	"database_driver": "sqlite",
	"database_dsn":    "",
	"store_backend":   StoreSQL,
	"server_addr":     ":8080",
	"log_level":       "info",
	"session_ttl":     "720h",
	"coalesce_loads":  true,
	"cors_origins":    []string{"*"},
}

var (
	AppConfig *Config
	v         *viper.Viper
)

// Initialize loads .env from the working directory, then the config file in
// Dir, creating it with defaults on first run.
func Initialize() error {
	if err := LoadDotEnv(".env"); err != nil {
		return err
	}
	return Load(Dir())
}

// LoadDotEnv exports the variables in path unless they are already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads dir/config.yaml with JOBTRACKER_* environment overrides.
func Load(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	nv := viper.New()
	nv.SetConfigFile(configFile)
	nv.SetConfigType("yaml")
	nv.SetEnvPrefix("JOBTRACKER")
	nv.AutomaticEnv()
	for key, value := range defaults {
		nv.SetDefault(key, value)
	}

	if err := nv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := nv.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	v = nv
	AppConfig = cfg
	return nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	switch strings.ToLower(c.StoreBackend) {
	case StoreSQL, StoreMemory:
	default:
		return fmt.Errorf("invalid store_backend %q (supported: sql, memory)", c.StoreBackend)
	}
	switch strings.ToLower(c.DatabaseDriver) {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("invalid database_driver %q (supported: sqlite, postgres)", c.DatabaseDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# jobtracker configuration
# Storage: sql (database_driver sqlite or postgres) or memory.
# memory keeps applications only while 'jobtracker serve' runs; other
# commands refuse to use it.
store_backend: sql
database_driver: sqlite
# Empty uses ~/.jobtracker/jobtracker.db for sqlite
database_dsn: ""

# HTTP API
server_addr: ":8080"
cors_origins:
  - "*"

log_level: info
session_ttl: 720h
coalesce_loads: true
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Keys lists the settable configuration keys
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set updates a configuration value and writes the file
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if v == nil {
		return errors.New("config not loaded")
	}

	previous := v.Get(key)
	v.Set(key, value)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		v.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		v.Set(key, previous)
		return err
	}
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	AppConfig = cfg
	return nil
}

// Get retrieves a configuration value
func Get(key string) string {
	if v == nil {
		return ""
	}
	if key == "cors_origins" {
		return strings.Join(v.GetStringSlice(key), ",")
	}
	return v.GetString(key)
}

// Dir returns the jobtracker state directory
func Dir() string {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return home
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".jobtracker")
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
