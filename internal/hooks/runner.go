package hooks

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ScriptsDir is the directory inside a package that holds hook scripts,
// one executable per hook name.
const ScriptsDir = "hooks"

// Package identifies the target of a hook invocation. It is built either
// from an installed record or from a staged manifest (preinstall runs before
// any record exists).
type Package struct {
	Name    string
	Version string
	Path    string
	Env     map[string]string
}

// HookFailedError reports a hook that exited non-zero or could not be
// spawned. Stderr is captured for diagnostics.
type HookFailedError struct {
	Hook     Hook
	Package  string
	ExitCode int
	Stderr   string
}

func (e *HookFailedError) Error() string {
	msg := fmt.Sprintf("hook %s failed for %s (exit %d)", e.Hook, e.Package, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Runner executes hook scripts as subprocesses with the contract from the
// package's point of view: cwd is the package directory, the environment is
// the process environment plus the package's declared env plus HOIST_*
// identifiers.
type Runner struct {
	packagesDir string
	extraEnv    map[string]string
	logger      *log.Logger
}

// NewRunner returns a Runner for one packages directory. extraEnv (typically
// the config file's env mapping) is layered below the package's own env.
func NewRunner(packagesDir string, extraEnv map[string]string, logger *log.Logger) *Runner {
	return &Runner{packagesDir: packagesDir, extraEnv: extraEnv, logger: logger}
}

// Run executes one hook against pkg. A missing script file is a no-op
// success; a disabled hook is skipped. Failure is always a *HookFailedError.
func (r *Runner) Run(hook Hook, pkg Package, disabled Set) error {
	if disabled.Disabled(hook) {
		r.logger.Debug("hook disabled, skipping", "hook", hook, "package", pkg.Name)
		return nil
	}

	script := filepath.Join(pkg.Path, ScriptsDir, string(hook))
	if _, err := os.Stat(script); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &HookFailedError{Hook: hook, Package: pkg.Name, ExitCode: -1, Stderr: err.Error()}
	}

	r.logger.Debug("running hook", "hook", hook, "package", pkg.Name, "script", script)

	var stderr bytes.Buffer
	cmd := exec.Command(script)
	cmd.Dir = pkg.Path
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr
	cmd.Env = r.environ(hook, pkg)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else if stderr.Len() == 0 {
			// Spawn failure: no process output, keep the OS error instead.
			stderr.WriteString(err.Error())
		}
		return &HookFailedError{
			Hook:     hook,
			Package:  pkg.Name,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
		}
	}

	return nil
}

// environ builds the hook environment: process env, then config env, then
// the package's declared env, then the engine-supplied identifiers. Later
// entries win on duplicate keys.
func (r *Runner) environ(hook Hook, pkg Package) []string {
	env := os.Environ()
	for k, v := range r.extraEnv {
		env = append(env, k+"="+v)
	}
	for k, v := range pkg.Env {
		env = append(env, k+"="+v)
	}
	env = append(env,
		"HOIST_HOOK="+string(hook),
		"HOIST_PACKAGE="+pkg.Name,
		"HOIST_VERSION="+pkg.Version,
		"HOIST_PACKAGE_DIR="+pkg.Path,
		"HOIST_PACKAGES_DIR="+r.packagesDir,
	)
	return env
}
