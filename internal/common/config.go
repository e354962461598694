package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Provider    ProviderConfig    `toml:"provider"`
	Analysis    AnalysisConfig    `toml:"analysis"`
	Credentials CredentialsConfig `toml:"credentials"`
	Retention   RetentionConfig   `toml:"retention"`
	WebSocket   WebSocketConfig   `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // Only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ProviderConfig configures the scoring provider API clients.
// The three analysis modules (fundamental, technical, esg) share one
// provider endpoint; per-user API keys are resolved at request time.
type ProviderConfig struct {
	BaseURL        string  `toml:"base_url"`
	RequestTimeout string  `toml:"request_timeout"` // Per-call HTTP timeout, e.g. "30s"
	RateLimit      int     `toml:"rate_limit"`      // Requests per second per module client
	MaxAttempts    int     `toml:"max_attempts"`    // Retry attempts per module call
	RetryBaseDelay string  `toml:"retry_base_delay"`
	RetryMaxDelay  string  `toml:"retry_max_delay"`
	JitterFraction float64 `toml:"jitter_fraction"`
}

// AnalysisConfig configures orchestration behavior.
type AnalysisConfig struct {
	ModuleTimeout   string `toml:"module_timeout"`   // Per-module call ceiling, e.g. "45s"
	WorkflowTimeout string `toml:"workflow_timeout"` // Outer ceiling for a whole analysis, e.g. "5m"
	APIVersion      string `toml:"api_version"`      // Reported in synthesis report metadata
}

// CredentialsConfig configures provider API key storage.
type CredentialsConfig struct {
	// EncryptionKey is the master secret used to encrypt stored provider
	// API keys (hashed to a 32-byte AES key). Usually supplied via the
	// CENSEO_CREDENTIAL_KEY environment variable rather than the file.
	EncryptionKey string `toml:"encryption_key"`
}

// RetentionConfig configures the scheduled sweep of old analysis records.
type RetentionConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
	MaxAge   string `toml:"max_age"`  // Records older than this are deleted, e.g. "720h"
}

type WebSocketConfig struct {
	Enabled       bool     `toml:"enabled"`
	AllowedEvents []string `toml:"allowed_events"` // Whitelist of events to broadcast (empty = allow all)
}

// NewDefaultConfig returns a Config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path:           "./data/censeo",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Provider: ProviderConfig{
			BaseURL:        "https://api.scoringprovider.io",
			RequestTimeout: "30s",
			RateLimit:      10,
			MaxAttempts:    3,
			RetryBaseDelay: "500ms",
			RetryMaxDelay:  "8s",
			JitterFraction: 0.2,
		},
		Analysis: AnalysisConfig{
			ModuleTimeout:   "45s",
			WorkflowTimeout: "5m",
			APIVersion:      "1.0",
		},
		Retention: RetentionConfig{
			Enabled:  true,
			Schedule: "0 3 * * *",
			MaxAge:   "2160h", // 90 days
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
		},
	}
}

// LoadFromFiles loads configuration from TOML files in order
// (defaults -> file1 -> file2 -> ... -> env overrides).
// Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies CENSEO_* environment variables over file config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CENSEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("CENSEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CENSEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("CENSEO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("CENSEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CENSEO_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}

	if baseURL := os.Getenv("CENSEO_PROVIDER_BASE_URL"); baseURL != "" {
		config.Provider.BaseURL = baseURL
	}
	if rateLimit := os.Getenv("CENSEO_PROVIDER_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.Atoi(rateLimit); err == nil {
			config.Provider.RateLimit = r
		}
	}

	if key := os.Getenv("CENSEO_CREDENTIAL_KEY"); key != "" {
		config.Credentials.EncryptionKey = key
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks that duration strings and schedules parse
func (c *Config) Validate() error {
	durations := map[string]string{
		"provider.request_timeout":  c.Provider.RequestTimeout,
		"provider.retry_base_delay": c.Provider.RetryBaseDelay,
		"provider.retry_max_delay":  c.Provider.RetryMaxDelay,
		"analysis.module_timeout":   c.Analysis.ModuleTimeout,
		"analysis.workflow_timeout": c.Analysis.WorkflowTimeout,
		"retention.max_age":         c.Retention.MaxAge,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q: %w", name, value, err)
		}
	}

	if c.Retention.Enabled && c.Retention.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Retention.Schedule); err != nil {
			return fmt.Errorf("invalid retention schedule %q: %w", c.Retention.Schedule, err)
		}
	}

	if c.Provider.JitterFraction < 0 || c.Provider.JitterFraction > 1 {
		return fmt.Errorf("provider.jitter_fraction must be in [0,1], got %v", c.Provider.JitterFraction)
	}

	return nil
}

// ParseDuration returns the parsed duration for a config value, or the
// fallback when the value is empty or invalid.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
