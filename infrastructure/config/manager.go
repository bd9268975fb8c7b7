package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// Setting is one configuration entry as shown to the user
type Setting struct {
	Key    string
	Value  string
	Secret bool
}

// Masked returns the value with secrets hidden
func (s Setting) Masked() string {
	if !s.Secret || s.Value == "" {
		return s.Value
	}
	if len(s.Value) <= 4 {
		return "****"
	}
	return "****" + s.Value[len(s.Value)-4:]
}

type field struct {
	secret bool
	get    func(c *Config) string
	set    func(c *Config, v string) error
}

var fields = map[string]field{
	"service.endpoint": {
		get: func(c *Config) string { return c.Service.Endpoint },
		set: func(c *Config, v string) error {
			u, err := url.Parse(v)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("%w: endpoint must be an http(s) URL", ErrInvalidValue)
			}
			c.Service.Endpoint = strings.TrimRight(v, "/")
			return nil
		},
	},
	"service.api_key": {
		secret: true,
		get:    func(c *Config) string { return c.Service.APIKey },
		set:    func(c *Config, v string) error { c.Service.APIKey = v; return nil },
	},
	"service.bearer_token": {
		secret: true,
		get:    func(c *Config) string { return c.Service.BearerToken },
		set:    func(c *Config, v string) error { c.Service.BearerToken = v; return nil },
	},
	"upload.folder_id": {
		get: func(c *Config) string { return c.Upload.FolderID },
		set: func(c *Config, v string) error { c.Upload.FolderID = v; return nil },
	},
	"upload.batch_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Upload.BatchSize) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("%w: batch size must be a positive integer", ErrInvalidValue)
			}
			c.Upload.BatchSize = n
			return nil
		},
	},
	"upload.timeout": {
		get: func(c *Config) string { return c.Upload.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("%w: timeout must be a positive duration such as 5m", ErrInvalidValue)
			}
			c.Upload.Timeout = d
			return nil
		},
	},
	"upload.compression_workers": {
		get: func(c *Config) string { return strconv.Itoa(c.Upload.CompressionWorkers) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: compression workers must be zero or more", ErrInvalidValue)
			}
			c.Upload.CompressionWorkers = n
			return nil
		},
	},
}

// ConfigManager reads and updates individual settings
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

func lookup(key string) (string, field, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	f, ok := fields[key]
	if !ok {
		return key, field{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return key, f, nil
}

// Get returns one setting
func (m *ConfigManager) Get(key string) (Setting, error) {
	key, f, err := lookup(key)
	if err != nil {
		return Setting{}, err
	}
	return Setting{Key: key, Value: f.get(m.config), Secret: f.secret}, nil
}

// Set validates and stores a setting, then saves the file
func (m *ConfigManager) Set(key, value string) error {
	_, f, err := lookup(key)
	if err != nil {
		return err
	}
	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return err
	}
	return Save(m.config, m.configPath)
}

// List returns every setting sorted by key
func (m *ConfigManager) List() []Setting {
	keys := Keys()
	result := make([]Setting, 0, len(keys))
	for _, k := range keys {
		f := fields[k]
		result = append(result, Setting{Key: k, Value: f.get(m.config), Secret: f.secret})
	}
	return result
}

// Keys returns the supported setting keys
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
