package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	configDir string
}

// NewLoader creates a configuration loader that reads config.yml from the
// given directory (usually the storage base dir).
func NewLoader(configDir string) Loader {
	return &loader{configDir: configDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODEMUNCH_*)
// 2. Config file (<configDir>/config.yml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.configDir)

	v.SetEnvPrefix("CODEMUNCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("storage.path")
	v.BindEnv("indexing.max_files")
	v.BindEnv("indexing.max_file_size_kb")
	v.BindEnv("indexing.workers")
	// Comma-separated list, split by viper's slice decode hook.
	v.BindEnv("indexing.ignore")

	setDefaults(v)

	// A missing config file is fine; defaults and env still apply.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults seeds viper with the Default() values.
func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("indexing.max_files", defaults.Indexing.MaxFiles)
	v.SetDefault("indexing.max_file_size_kb", defaults.Indexing.MaxFileSizeKB)
	v.SetDefault("indexing.workers", defaults.Indexing.Workers)
	v.SetDefault("indexing.ignore", defaults.Indexing.Ignore)
}

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty")
	}
	if c.Indexing.MaxFiles <= 0 {
		return fmt.Errorf("indexing.max_files must be positive, got %d", c.Indexing.MaxFiles)
	}
	if c.Indexing.MaxFileSizeKB <= 0 {
		return fmt.Errorf("indexing.max_file_size_kb must be positive, got %d", c.Indexing.MaxFileSizeKB)
	}
	if c.Indexing.Workers <= 0 {
		return fmt.Errorf("indexing.workers must be positive, got %d", c.Indexing.Workers)
	}
	return nil
}
