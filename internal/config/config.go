// Package config loads the optional hoist configuration file. Absence of
// the file is not an error: defaults apply. An explicitly requested file
// (--config) must exist.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFileName is the config file base name (extension decides format).
const ConfigFileName = "config"

// Config is the loaded configuration with defaults applied.
type Config struct {
	// PackagesDir is the default packages directory for all commands.
	PackagesDir string `mapstructure:"packages_dir"`
	// SyncMode is the default dependency sync mode for install.
	SyncMode string `mapstructure:"sync_mode"`
	// DisabledHooks lists hook names to skip by default. Validated per
	// command, like the --skip-hooks flag.
	DisabledHooks []string `mapstructure:"disabled_hooks"`
	// Env is propagated into hook and run-task subprocesses.
	Env map[string]string `mapstructure:"env"`
}

// DefaultPackagesDir returns ~/.hoist/packages.
func DefaultPackagesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".hoist", "packages"), nil
}

// Dir returns the hoist configuration directory: $XDG_CONFIG_HOME/hoist,
// falling back to ~/.config/hoist.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hoist"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hoist"), nil
}

// Load reads the configuration. When path is empty the default location is
// probed and a missing file yields pure defaults; a non-empty path must
// point at an existing file.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaultDir, err := DefaultPackagesDir()
	if err != nil {
		return nil, err
	}
	v.SetDefault("packages_dir", defaultDir)
	v.SetDefault("sync_mode", "preferCi")
	v.SetDefault("disabled_hooks", []string{})
	v.SetDefault("env", map[string]string{})

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		cfgDir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("toml")
		v.AddConfigPath(cfgDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// No config file: defaults apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
