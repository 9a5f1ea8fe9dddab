// Package task executes run-tasks declared in a package's manifest scripts.
// Commands run in a built-in POSIX shell interpreter, so manifests behave
// identically regardless of the host's /bin/sh.
package task

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

// UnknownTaskError reports a task name absent from the package's scripts.
// A user error, not a system fault.
type UnknownTaskError struct {
	Name      string
	Package   string
	Available []string
}

func (e *UnknownTaskError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("package %s declares no tasks", e.Package)
	}
	return fmt.Sprintf("package %s has no task %q: available tasks are %s",
		e.Package, e.Name, strings.Join(e.Available, ", "))
}

// Executor runs tasks for packages in one packages directory.
type Executor struct {
	packagesDir string
	extraEnv    map[string]string
}

// NewExecutor returns an Executor. extraEnv (the config env mapping) is
// layered below the package's declared env.
func NewExecutor(packagesDir string, extraEnv map[string]string) *Executor {
	return &Executor{packagesDir: packagesDir, extraEnv: extraEnv}
}

// Run executes the named task from rec's scripts with the package directory
// as cwd. args become the script's positional parameters. The returned
// error carries the script's exit status (see ExitStatus).
func (e *Executor) Run(ctx context.Context, rec *pkgdir.Record, name string, args []string) error {
	command, ok := rec.Scripts[name]
	if !ok {
		available := make([]string, 0, len(rec.Scripts))
		for task := range rec.Scripts {
			available = append(available, task)
		}
		sort.Strings(available)
		return &UnknownTaskError{Name: name, Package: rec.Name, Available: available}
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), name)
	if err != nil {
		return fmt.Errorf("task %q has a syntax error: %w", name, err)
	}

	opts := []interp.RunnerOption{
		interp.Dir(rec.Path),
		interp.Env(expand.ListEnviron(e.environ(rec, name)...)),
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
	}
	if len(args) > 0 {
		opts = append(opts, interp.Params(args...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to set up task interpreter: %w", err)
	}
	return runner.Run(ctx, prog)
}

// ExitStatus extracts the exit code from a Run error, if the task ran and
// exited non-zero.
func ExitStatus(err error) (int, bool) {
	status, ok := interp.IsExitStatus(err)
	return int(status), ok
}

func (e *Executor) environ(rec *pkgdir.Record, taskName string) []string {
	env := os.Environ()
	for k, v := range e.extraEnv {
		env = append(env, k+"="+v)
	}
	for k, v := range rec.Env {
		env = append(env, k+"="+v)
	}
	env = append(env,
		"HOIST_TASK="+taskName,
		"HOIST_PACKAGE="+rec.Name,
		"HOIST_VERSION="+rec.Version,
		"HOIST_PACKAGE_DIR="+rec.Path,
		"HOIST_PACKAGES_DIR="+e.packagesDir,
	)
	return env
}
