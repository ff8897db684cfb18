// Package config is the layered configuration surface used only by
// cmd/silo to construct the engine; per spec.md §1 configuration loading
// itself is an external collaborator and core engine packages never read
// this package directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/nishad/silo/internal/paths"
	"gopkg.in/yaml.v3"
)

// Config represents SILO's process-level configuration.
type Config struct {
	DataDirectory string         `yaml:"data_directory"`
	Database      DatabaseConfig `yaml:"database"`
	Query         QueryConfig    `yaml:"query"`
}

// DatabaseConfig controls where partition files and the schema descriptor
// live on disk.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// QueryConfig controls the partitioned parallel executor and the streaming
// result backpressure contract of spec.md §5.
type QueryConfig struct {
	WorkerPoolSize     int `yaml:"worker_pool_size"`     // 0 = runtime.NumCPU()
	StreamBatchSize    int `yaml:"stream_batch_size"`    // entries per emitted batch
	StreamBatchMinMs   int `yaml:"stream_batch_min_ms"`  // minimum inter-batch interval
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDirectory: paths.GetPaths().DataDir,
		Database: DatabaseConfig{
			Path: paths.GetDatabasePath(),
		},
		Query: QueryConfig{
			WorkerPoolSize:   runtime.NumCPU(),
			StreamBatchSize:  1000,
			StreamBatchMinMs: 10,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults for
// any field the file doesn't set and for the whole config if the file is
// absent.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.DataDirectory = expandPath(config.DataDirectory)
	config.Database.Path = expandPath(config.Database.Path)

	if config.Query.WorkerPoolSize <= 0 {
		config.Query.WorkerPoolSize = runtime.NumCPU()
	}

	return config, nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	if path := os.Getenv("SILO_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat("silo.yaml"); err == nil {
		return "silo.yaml"
	}

	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// EnsureDirectories creates directories the config references.
func (c *Config) EnsureDirectories() error {
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	dirs := []string{c.DataDirectory, filepath.Dir(c.Database.Path)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}
