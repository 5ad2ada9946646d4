// Package config provides configuration handling for promptflow.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Engine configuration
	Engine EngineConfig `json:"engine"`

	// Providers configuration
	Providers ProvidersConfig `json:"providers"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// EngineConfig contains execution engine settings
type EngineConfig struct {
	// Workers is the batch runner worker pool size
	Workers int `json:"workers"`

	// ModelTimeoutSeconds is the per-call timeout for model invocations
	ModelTimeoutSeconds int `json:"model_timeout_seconds"`
}

// ModelTimeout returns the per-call model timeout as a duration. Zero means
// no timeout.
func (c EngineConfig) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutSeconds) * time.Second
}

// ProvidersConfig contains model provider settings
type ProvidersConfig struct {
	// OpenAI configuration
	OpenAI OpenAIConfig `json:"openai"`
}

// OpenAIConfig contains OpenAI provider settings
type OpenAIConfig struct {
	// APIKey is the OpenAI API key
	APIKey string `json:"api_key"`

	// BaseURL overrides the API endpoint (for compatible providers)
	BaseURL string `json:"base_url,omitempty"`

	// DefaultModel is used when a prompt node selects no model
	DefaultModel string `json:"default_model,omitempty"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	// Level is the logging level
	Level string `json:"level"` // "debug", "info", "warn", "error"

	// Format is the log format
	Format string `json:"format"` // "json"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers:             4,
			ModelTimeoutSeconds: 60,
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads the configuration from a JSON file, applies environment
// overrides, and fills unset values from the defaults. A .env file in the
// working directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the JSON
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyEnv(config)
	return config, nil
}

// ApplyEnv loads a .env file when present and overrides configuration
// values from the environment.
func ApplyEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("PROMPTFLOW_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil && workers > 0 {
			config.Engine.Workers = workers
		}
	}
	if v := os.Getenv("PROMPTFLOW_MODEL_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			config.Engine.ModelTimeoutSeconds = seconds
		}
	}
	if v := os.Getenv("PROMPTFLOW_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		config.Providers.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_DEFAULT_MODEL"); v != "" {
		config.Providers.OpenAI.DefaultModel = v
	}
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	// Create the directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal the JSON
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
