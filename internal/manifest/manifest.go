// Package manifest reads the package.json manifest that every deployable
// bundle carries at its root. Only the fields hoist consumes are modeled;
// unknown fields are ignored so that ordinary npm manifests work unchanged.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// Filename is the manifest file expected at the root of a package bundle.
const Filename = "package.json"

// Manifest is the subset of package.json that hoist reads.
type Manifest struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Scripts map[string]string `json:"scripts"`
	Engines map[string]string `json:"engines"`
	Hoist   Extensions        `json:"hoist"`
}

// Extensions holds the hoist-specific manifest section.
type Extensions struct {
	// Env is injected into hook and run-task subprocesses for this package.
	Env map[string]string `json:"env"`
}

// Compatibility returns the declared hoist engine range, empty if none.
func (m *Manifest) Compatibility() string {
	return m.Engines["hoist"]
}

// Load reads and validates the manifest found in dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", Filename, dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return &m, nil
}

// Validate checks the fields hoist depends on to build a package record.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest is missing \"name\"")
	}
	if m.Version == "" {
		return fmt.Errorf("manifest is missing \"version\"")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("manifest version %q is not a semantic version: %w", m.Version, err)
	}
	if r := m.Compatibility(); r != "" {
		if _, err := semver.NewConstraint(r); err != nil {
			return fmt.Errorf("manifest engines.hoist range %q is invalid: %w", r, err)
		}
	}
	return nil
}

// CheckEngine verifies the manifest's engines.hoist range against the running
// engine version. An empty range accepts every engine.
func (m *Manifest) CheckEngine(engineVersion string) error {
	r := m.Compatibility()
	if r == "" {
		return nil
	}

	c, err := semver.NewConstraint(r)
	if err != nil {
		return fmt.Errorf("engines.hoist range %q is invalid: %w", r, err)
	}
	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("engine version %q is not a semantic version: %w", engineVersion, err)
	}

	if !c.Check(v) {
		return &IncompatibleEngineError{
			Package: m.Name,
			Version: m.Version,
			Range:   r,
			Engine:  engineVersion,
		}
	}
	return nil
}

// IncompatibleEngineError reports a package whose declared engines.hoist
// range excludes the running engine.
type IncompatibleEngineError struct {
	Package string
	Version string
	Range   string
	Engine  string
}

func (e *IncompatibleEngineError) Error() string {
	return fmt.Sprintf("package %s@%s requires hoist %s, but this is hoist %s",
		e.Package, e.Version, e.Range, e.Engine)
}
