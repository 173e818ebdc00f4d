package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/pff/pkg/frame"
	"github.com/ssargent/pff/pkg/logging"
)

// Config represents the pff tool configuration
type Config struct {
	Input   Input   `yaml:"input"`
	Logging Logging `yaml:"logging"`
	Export  Export  `yaml:"export"`
}

// Input controls how event log files are read
type Input struct {
	Path           string `yaml:"path"`             // explicit .pff file or numbered file stub
	MaxRecordSize  int    `yaml:"max_record_size"`  // bytes
	MaxPayloadSize int    `yaml:"max_payload_size"` // decompressed bytes, 0 = max_record_size
	BufferSize     int    `yaml:"buffer_size"`      // bytes, 0 = default
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// Export controls the pebble export target
type Export struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Input: Input{
			MaxRecordSize: frame.DefaultMaxRecordSize,
		},
		Logging: Logging{
			Level: "info",
		},
		Export: Export{
			Dir: "./pff-export",
		},
	}
}

// Validate checks the configuration for values the reader cannot use
func (c *Config) Validate() error {
	if c.Input.MaxRecordSize <= 0 {
		return fmt.Errorf("input.max_record_size must be positive, got %d", c.Input.MaxRecordSize)
	}
	if c.Input.MaxPayloadSize < 0 {
		return fmt.Errorf("input.max_payload_size must not be negative, got %d", c.Input.MaxPayloadSize)
	}
	if c.Input.BufferSize < 0 {
		return fmt.Errorf("input.buffer_size must not be negative, got %d", c.Input.BufferSize)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Values missing
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./pff.yaml"
	}

	// For Linux/macOS, use ~/.config/pff/config.yaml
	configDir := filepath.Join(homeDir, ".config", "pff")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
