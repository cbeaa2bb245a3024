package config

import (
	"os"
	"path/filepath"
)

// Config represents the complete codemunch configuration.
// It can be loaded from ~/.codemunch/config.yml with environment variable
// overrides.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Indexing IndexingConfig `yaml:"indexing" mapstructure:"indexing"`
}

// StorageConfig defines where indexes and raw content snapshots live.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // base directory, default ~/.codemunch
}

// IndexingConfig bounds the work one indexing run may do and which paths
// are skipped. The extraction core itself never enforces limits; bounding
// total work belongs to the hosting system.
type IndexingConfig struct {
	MaxFiles      int      `yaml:"max_files" mapstructure:"max_files"`               // file-count cap per run
	MaxFileSizeKB int      `yaml:"max_file_size_kb" mapstructure:"max_file_size_kb"` // per-file size cap
	Workers       int      `yaml:"workers" mapstructure:"workers"`                   // parallel extraction workers
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                     // glob patterns to skip
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path: defaultStoragePath(),
		},
		Indexing: IndexingConfig{
			MaxFiles:      500,
			MaxFileSizeKB: 500,
			Workers:       4,
			Ignore:        DefaultIgnorePatterns(),
		},
	}
}

// DefaultIgnorePatterns lists path globs that never contain first-party
// source worth indexing.
func DefaultIgnorePatterns() []string {
	return []string{
		"**/node_modules/**",
		"**/vendor/**",
		"**/venv/**",
		"**/.venv/**",
		"**/__pycache__/**",
		"**/dist/**",
		"**/build/**",
		"**/.git/**",
		"**/.tox/**",
		"**/.mypy_cache/**",
		"**/target/**",
		"**/.gradle/**",
		"**/testdata/**",
		"**/test_data/**",
		"**/fixtures/**",
		"**/snapshots/**",
		"**/migrations/**",
		"**/generated/**",
		"**/*.min.js",
		"**/*.min.ts",
		"**/*.bundle.js",
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codemunch"
	}
	return filepath.Join(home, ".codemunch")
}
