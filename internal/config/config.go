package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Slides SlidesConfig `json:"slides"`
	Output OutputConfig `json:"output"`
}

// SlidesConfig describes the input slide collection
type SlidesConfig struct {
	Path            string   `json:"path"`
	ValidExtensions []string `json:"valid_extensions"`
}

// OutputConfig describes where and how renditions are produced
type OutputConfig struct {
	ProcessedPath string `json:"processed_path"`
	ScaleFactor   int    `json:"scale_factor"`
	Workers       int    `json:"workers"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Slides: SlidesConfig{
			Path:            "./slides",
			ValidExtensions: []string{".svs", ".tif", ".tiff", ".png", ".jpg", ".jpeg", ".bmp", ".webp"},
		},
		Output: OutputConfig{
			ProcessedPath: "./processed",
			ScaleFactor:   32,
			Workers:       0, // 0 selects one worker per CPU
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Slides.Path == "" {
		return fmt.Errorf("slides.path cannot be empty")
	}

	if len(c.Slides.ValidExtensions) == 0 {
		return fmt.Errorf("slides.valid_extensions cannot be empty")
	}

	for _, ext := range c.Slides.ValidExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("slides.valid_extensions entries must start with a dot, got %q", ext)
		}
	}

	if c.Output.ProcessedPath == "" {
		return fmt.Errorf("output.processed_path cannot be empty")
	}

	if c.Output.ScaleFactor < 1 {
		return fmt.Errorf("output.scale_factor must be positive")
	}

	if c.Output.Workers < 0 {
		return fmt.Errorf("output.workers cannot be negative")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "histolab", "config.json")
}
