package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the CLI looks for its configuration
	DefaultPath = "config/config.yaml"

	defaultBatchSize = 3
	defaultTimeout   = 5 * time.Minute
)

// Config represents the CLI configuration
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Upload  UploadConfig  `yaml:"upload"`
}

// ServiceConfig contains the media service connection settings
type ServiceConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"api_key"`
	BearerToken string `yaml:"bearer_token,omitempty"`
}

// UploadConfig contains upload scheduling settings
type UploadConfig struct {
	// FolderID overrides the folder served by the /config endpoint
	FolderID           string        `yaml:"folder_id,omitempty"`
	BatchSize          int           `yaml:"batch_size"`
	Timeout            time.Duration `yaml:"timeout"`
	CompressionWorkers int           `yaml:"compression_workers,omitempty"`
}

// ApplyDefaults fills unset scheduling values
func (c *Config) ApplyDefaults() {
	if c.Upload.BatchSize <= 0 {
		c.Upload.BatchSize = defaultBatchSize
	}
	if c.Upload.Timeout <= 0 {
		c.Upload.Timeout = defaultTimeout
	}
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// Save writes the configuration to the specified YAML file. The file holds
// the api key, so it is only readable by its owner.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
