package hooks

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testRunner(packagesDir string, extraEnv map[string]string) *Runner {
	return NewRunner(packagesDir, extraEnv, log.New(io.Discard))
}

// writeHook plants an executable hook script inside pkgDir.
func writeHook(t *testing.T, pkgDir string, hook Hook, body string) {
	t.Helper()
	dir := filepath.Join(pkgDir, ScriptsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create hooks dir: %v", err)
	}
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, string(hook)), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write hook script: %v", err)
	}
}

func testPackage(t *testing.T) Package {
	t.Helper()
	return Package{
		Name:    "api-server",
		Version: "2.4.0",
		Path:    t.TempDir(),
	}
}

func TestRun_MissingScriptIsNoOp(t *testing.T) {
	pkg := testPackage(t)
	r := testRunner(t.TempDir(), nil)

	if err := r.Run(PreInstall, pkg, nil); err != nil {
		t.Errorf("Run() with no script = %v; want nil", err)
	}
}

func TestRun_SuccessfulScript(t *testing.T) {
	pkg := testPackage(t)
	marker := filepath.Join(pkg.Path, "ran")
	writeHook(t, pkg.Path, PostInstall, "touch "+marker)
	r := testRunner(t.TempDir(), nil)

	if err := r.Run(PostInstall, pkg, nil); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("hook script did not run: %v", err)
	}
}

func TestRun_FailingScript(t *testing.T) {
	pkg := testPackage(t)
	writeHook(t, pkg.Path, PreUse, "echo refusing >&2\nexit 3")
	r := testRunner(t.TempDir(), nil)

	err := r.Run(PreUse, pkg, nil)
	var failed *HookFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Run() error = %v; want *HookFailedError", err)
	}
	if failed.Hook != PreUse || failed.ExitCode != 3 {
		t.Errorf("HookFailedError = %+v; want hook preuse, exit 3", failed)
	}
	if !strings.Contains(failed.Stderr, "refusing") {
		t.Errorf("Stderr = %q; want captured script output", failed.Stderr)
	}
}

func TestRun_DisabledHookSkipped(t *testing.T) {
	pkg := testPackage(t)
	writeHook(t, pkg.Path, PreUninstall, "exit 1")
	r := testRunner(t.TempDir(), nil)

	disabled := Set{PreUninstall: true}
	if err := r.Run(PreUninstall, pkg, disabled); err != nil {
		t.Errorf("Run() with disabled hook = %v; want nil", err)
	}
}

// Hooks see the layered environment: config env below package env below the
// engine identifiers.
func TestRun_Environment(t *testing.T) {
	pkg := testPackage(t)
	pkg.Env = map[string]string{"PKG_VAR": "from-package"}
	out := filepath.Join(pkg.Path, "env.txt")
	writeHook(t, pkg.Path, PostUse,
		`echo "$HOIST_HOOK $HOIST_PACKAGE $HOIST_VERSION $CFG_VAR $PKG_VAR" > `+out+"\n"+
			`echo "$HOIST_PACKAGE_DIR" >> `+out)

	packagesDir := t.TempDir()
	r := testRunner(packagesDir, map[string]string{"CFG_VAR": "from-config"})

	if err := r.Run(PostUse, pkg, nil); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not write env file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "postuse api-server 2.4.0 from-config from-package" {
		t.Errorf("hook env line = %q", lines[0])
	}
	if len(lines) < 2 || lines[1] != pkg.Path {
		t.Errorf("HOIST_PACKAGE_DIR = %q; want %q", lines[len(lines)-1], pkg.Path)
	}
}

// The working directory of a hook is the package directory, so relative
// paths in scripts resolve inside the package.
func TestRun_WorkingDirectory(t *testing.T) {
	pkg := testPackage(t)
	writeHook(t, pkg.Path, PostInstall, "pwd > cwd.txt")
	r := testRunner(t.TempDir(), nil)

	if err := r.Run(PostInstall, pkg, nil); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(pkg.Path, "cwd.txt"))
	if err != nil {
		t.Fatalf("hook did not write cwd file: %v", err)
	}
	got, err := filepath.EvalSymlinks(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("failed to resolve cwd: %v", err)
	}
	want, _ := filepath.EvalSymlinks(pkg.Path)
	if got != want {
		t.Errorf("hook cwd = %q; want %q", got, want)
	}
}
