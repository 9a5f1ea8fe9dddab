package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	// Point the default config location at an empty directory.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SyncMode != "preferCi" {
		t.Errorf("SyncMode = %q; want preferCi default", cfg.SyncMode)
	}
	if cfg.PackagesDir == "" {
		t.Error("PackagesDir default is empty")
	}
	if !strings.HasSuffix(cfg.PackagesDir, filepath.Join(".hoist", "packages")) {
		t.Errorf("PackagesDir = %q; want ~/.hoist/packages default", cfg.PackagesDir)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hoist.toml")
	body := `
packages_dir = "/srv/packages"
sync_mode = "ci"
disabled_hooks = ["postinstall"]

[env]
DEPLOY_ENV = "staging"
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.PackagesDir != "/srv/packages" {
		t.Errorf("PackagesDir = %q; want /srv/packages", cfg.PackagesDir)
	}
	if cfg.SyncMode != "ci" {
		t.Errorf("SyncMode = %q; want ci", cfg.SyncMode)
	}
	if len(cfg.DisabledHooks) != 1 || cfg.DisabledHooks[0] != "postinstall" {
		t.Errorf("DisabledHooks = %v; want [postinstall]", cfg.DisabledHooks)
	}
	if cfg.Env["DEPLOY_ENV"] != "staging" {
		t.Errorf("Env = %v; want DEPLOY_ENV=staging", cfg.Env)
	}
}

// An explicitly requested file must exist; only the default location may be
// silently absent.
func TestLoad_ExplicitFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() with missing explicit config should fail")
	}
}

func TestLoad_DefaultLocationFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	cfgDir := filepath.Join(xdg, "hoist")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	body := `sync_mode = "install"` + "\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SyncMode != "install" {
		t.Errorf("SyncMode = %q; want install from default-location file", cfg.SyncMode)
	}
}

func TestDir_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() failed: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "hoist") {
		t.Errorf("Dir() = %q; want /tmp/xdg/hoist", dir)
	}
}
