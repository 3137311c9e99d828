// ABOUTME: Configuration loading and parsing for kbase
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config represents the complete kbase configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Client    ClientConfig    `yaml:"client"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// StoreConfig selects and configures the entry storage backend
type StoreConfig struct {
	// Backend is one of "notion", "sqlite", or "memory"
	Backend string       `yaml:"backend"`
	Notion  NotionConfig `yaml:"notion"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

// NotionConfig holds Notion API credentials and database identifiers
type NotionConfig struct {
	APIKey            string `yaml:"api_key"`
	DatabaseID        string `yaml:"database_id"`
	ReadingDatabaseID string `yaml:"reading_database_id"`
}

// SQLiteConfig holds the local database configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig holds per-category cache tuning
type CacheConfig struct {
	StalenessWindow time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	StalenessWindowRaw string `yaml:"staleness_window"`
}

// SummarizeConfig holds link summarizer tuning
type SummarizeConfig struct {
	UserAgent string `yaml:"user_agent"`

	Timeout time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`
}

// ClientConfig holds settings for the TUI and other API consumers
type ClientConfig struct {
	// BaseURL is the kbase server the TUI talks to
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied when the YAML omits a value.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultBackend         = "memory"
	DefaultStalenessWindow = 5 * time.Minute
	DefaultClientBaseURL   = "http://localhost:8080"
)

// DefaultPath returns the config file location, honoring KBASE_CONFIG
// and falling back to the XDG config directory.
func DefaultPath() string {
	if p := os.Getenv("KBASE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "kbase", "config.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Cache.StalenessWindow = DefaultStalenessWindow
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultClientBaseURL
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "notion":
		if c.Store.Notion.APIKey == "" {
			return fmt.Errorf("store.notion.api_key is required for the notion backend")
		}
		if c.Store.Notion.DatabaseID == "" {
			return fmt.Errorf("store.notion.database_id is required for the notion backend")
		}
		if c.Store.Notion.ReadingDatabaseID == "" {
			return fmt.Errorf("store.notion.reading_database_id is required for the notion backend")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend must be notion, sqlite, or memory, got %q", c.Store.Backend)
	}

	if c.Cache.StalenessWindow < 0 {
		return fmt.Errorf("cache.staleness_window must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	cfg.Cache.StalenessWindow = DefaultStalenessWindow
	if cfg.Cache.StalenessWindowRaw != "" {
		cfg.Cache.StalenessWindow, err = time.ParseDuration(cfg.Cache.StalenessWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing staleness_window %q: %w", cfg.Cache.StalenessWindowRaw, err)
		}
	}

	if cfg.Summarize.TimeoutRaw != "" {
		cfg.Summarize.Timeout, err = time.ParseDuration(cfg.Summarize.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing summarize timeout %q: %w", cfg.Summarize.TimeoutRaw, err)
		}
	}

	return nil
}
