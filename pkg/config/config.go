// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// AppName names the XDG directories
	AppName = "intake"

	// Configuration
	EnvPrefix        = "INTAKE" // Environment variable prefix for Viper
	ConfigFileName   = "config" // Config file name for XDG config dir (without extension)
	LocalConfigFile  = "intake" // Config file name for current directory (without extension)
	ConfigType       = "yaml"   // Config file type
	DefaultConfigExt = ".yaml"  // Default config file extension
)

// Paths holds all XDG-compliant directory paths
type Paths struct {
	DataDir   string
	CacheDir  string
	ConfigDir string

	// Subdirectories
	StoreDir string // JetStream storage for the embedded NATS server
	LogFile  string
}

var (
	// GlobalPaths is the global paths instance
	GlobalPaths *Paths
)

func init() {
	GlobalPaths = GetPaths()
}

// xdgDir resolves an XDG base directory, falling back to fallback under $HOME
func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
		os.Exit(1)
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// GetPaths returns XDG-compliant directory paths
func GetPaths() *Paths {
	dataDir := filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), AppName)
	cacheDir := filepath.Join(xdgDir("XDG_CACHE_HOME", ".cache"), AppName)
	configDir := filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), AppName)

	return &Paths{
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		ConfigDir: configDir,
		StoreDir:  filepath.Join(dataDir, "store"),
		LogFile:   filepath.Join(dataDir, "debug.log"),
	}
}

// IsRepoMode returns true when an intake.yaml exists in the current
// working directory
func IsRepoMode() bool {
	_, err := os.Stat(filepath.Join(".", LocalConfigFile+DefaultConfigExt))
	return err == nil
}

// InitDirs creates all necessary directories
func InitDirs() error {
	dirs := []string{
		GlobalPaths.ConfigDir,
		GlobalPaths.DataDir,
		GlobalPaths.CacheDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Store holds account hashes
	if err := os.MkdirAll(GlobalPaths.StoreDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", GlobalPaths.StoreDir, err)
	}

	return nil
}
