// Package paths resolves OS-appropriate directories for SILO's on-disk
// database (one directory per loaded database, holding partition files and
// a schema descriptor).
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the base directories SILO reads and writes.
type Paths struct {
	ConfigDir string
	DataDir   string
	CacheDir  string
	StateDir  string
}

// GetPaths returns all base paths, respecting environment variable
// overrides before falling back to XDG defaults.
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("SILO_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "silo"),
		DataDir:   getDir("SILO_DATA_HOME", "XDG_DATA_HOME", ".local/share", "silo"),
		CacheDir:  getDir("SILO_CACHE_HOME", "XDG_CACHE_HOME", ".cache", "silo"),
		StateDir:  getDir("SILO_STATE_HOME", "XDG_STATE_HOME", ".local/state", "silo"),
	}
}

func getDir(siloEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check SILO-specific env
	if dir := os.Getenv(siloEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetDatabasePath returns the directory holding the loaded database's
// partition files and schema descriptor.
func GetDatabasePath() string {
	if path := os.Getenv("SILO_DB_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "database")
}

// EnsureDirectories creates all directories SILO needs before first use.
func EnsureDirectories() error {
	p := GetPaths()
	dirs := []string{
		p.ConfigDir,
		p.DataDir,
		p.CacheDir,
		p.StateDir,
		GetDatabasePath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
