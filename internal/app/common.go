package app

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/blackwell-systems/hoist/internal/config"
	"github.com/blackwell-systems/hoist/internal/engine"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

// loadConfig reads the config file selected by --config (or the default
// location) and applies the --dir override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDir != "" {
		cfg.PackagesDir = flagDir
	}
	return cfg, nil
}

// openStore initializes the packages directory from the effective config.
func openStore(cfg *config.Config) (*pkgdir.Store, error) {
	store, err := pkgdir.New(cfg.PackagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open packages directory %s: %w", cfg.PackagesDir, err)
	}
	return store, nil
}

// openEngine builds the deployment engine for mutating commands. Callers
// must Close it.
func openEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store, cfg.Env, logger), cfg, nil
}

// mergeDisabledHooks combines the config's default disabled hooks with the
// per-command --skip-hooks values.
func mergeDisabledHooks(cfg *config.Config, flagValues []string) []string {
	merged := append([]string{}, cfg.DisabledHooks...)
	return append(merged, flagValues...)
}

// dirSize walks a directory tree summing regular file sizes.
func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// printWarnings reports post-hook failures that did not abort the operation.
func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Printf("⚠  %s\n", w)
	}
}
