// Package common provides shared utilities for autoanalyst
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for autoanalyst
type Config struct {
	Environment string        `toml:"environment"`
	SecretsFile string        `toml:"secrets_file"` // TOML secrets store consulted before the environment
	EnvFile     string        `toml:"env_file"`     // dotenv file loaded at startup (local development)
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	History AreaConfig `toml:"history"` // One JSON file per analysis run
	Charts  AreaConfig `toml:"charts"`  // Rendered price charts keyed by record id
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// YahooConfig holds Yahoo Finance client configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey      string `toml:"api_key"`
	BaseURL     string `toml:"base_url"` // empty uses the public Gemini endpoint
	Model       string `toml:"model"`
	MaxAttempts int    `toml:"max_attempts"`
	BaseBackoff string `toml:"base_backoff"`
	Citations   bool   `toml:"citations"` // append grounding sources to the report
}

// GetBaseBackoff parses and returns the first retry delay
func (c *GeminiConfig) GetBaseBackoff() time.Duration {
	d, err := time.ParseDuration(c.BaseBackoff)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		SecretsFile: "secrets.toml",
		EnvFile:     ".env",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8501,
		},
		Storage: StorageConfig{
			History: AreaConfig{Path: "history"},
			Charts:  AreaConfig{Path: "history/charts"},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query2.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
				UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			},
			Gemini: GeminiConfig{
				Model:       "gemini-2.0-flash",
				MaxAttempts: 3,
				BaseBackoff: "10s",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Local .env values override the process environment, then env overrides apply
	if err := loadEnvFile(config.EnvFile); err != nil {
		return nil, err
	}
	applyEnvOverrides(config)

	return config, nil
}

// loadEnvFile loads a dotenv file when it exists. Missing files are not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AUTOANALYST_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("AUTOANALYST_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("AUTOANALYST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("AUTOANALYST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("AUTOANALYST_HISTORY_PATH"); path != "" {
		config.Storage.History.Path = path
		config.Storage.Charts.Path = filepath.Join(path, "charts")
	}

	if model := os.Getenv("AUTOANALYST_GEMINI_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}

	if secrets := os.Getenv("AUTOANALYST_SECRETS_FILE"); secrets != "" {
		config.SecretsFile = secrets
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// keyToEnvMapping lists the environment variables checked for each named secret.
var keyToEnvMapping = map[string][]string{
	"GOOGLE_API_KEY": {"GOOGLE_API_KEY", "GEMINI_API_KEY", "AUTOANALYST_GEMINI_API_KEY"},
}

// ResolveAPIKey resolves an API key from the secrets file, the environment, or fallback.
// The secrets file is the deployed secret store and wins over local environment values.
func ResolveAPIKey(secretsFile, name, fallback string) (string, error) {
	if val := readSecret(secretsFile, name); val != "" {
		return val, nil
	}

	envNames, ok := keyToEnvMapping[name]
	if !ok {
		envNames = []string{name}
	}
	for _, envName := range envNames {
		if val := os.Getenv(envName); val != "" {
			return val, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("%s not found in secrets or environment", name)
}

// readSecret looks up a top-level string key in a TOML secrets file.
// Any read or parse failure is treated as "not present".
func readSecret(path, name string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var secrets map[string]any
	if err := toml.Unmarshal(data, &secrets); err != nil {
		return ""
	}
	val, _ := secrets[name].(string)
	return strings.TrimSpace(val)
}
