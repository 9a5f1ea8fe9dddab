package engine

import (
	"os"
	"path/filepath"

	"github.com/blackwell-systems/hoist/internal/hooks"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
	"github.com/blackwell-systems/hoist/internal/resolve"
)

// UninstallOptions configures one uninstall transaction.
type UninstallOptions struct {
	DisabledHooks []string
}

// UninstallResult reports a completed uninstall.
type UninstallResult struct {
	Record   *pkgdir.Record
	Warnings []string
}

// Uninstall resolves target and removes it. The package the current pointer
// references may not be uninstalled; use a different package first.
func (e *Engine) Uninstall(target string, opts UninstallOptions) (*UninstallResult, error) {
	disabled, err := hooks.ParseSet(opts.DisabledHooks, hooks.UninstallHooks)
	if err != nil {
		return nil, err
	}

	lock, err := e.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Release(e.logger)

	rec, err := resolve.Resolve(e.store, target)
	if err != nil {
		return nil, err
	}

	currentDir, err := e.store.CurrentDirectoryName()
	if err != nil {
		return nil, err
	}
	if rec.DirectoryName == currentDir {
		return nil, &GuardViolationError{DirectoryName: rec.DirectoryName}
	}

	warnings, err := e.removeLocked(rec, disabled)
	if err != nil {
		return nil, err
	}
	return &UninstallResult{Record: rec, Warnings: warnings}, nil
}

// removeLocked runs the hook-guarded removal sequence with the lock held:
// preuninstall (veto), contents, record, postuninstall (warn). Contents go
// before the record so a crash between the two leaves a detectable orphan
// rather than a dangling record. The hooks directory is stashed first so
// postuninstall can still run once the package is gone.
func (e *Engine) removeLocked(rec *pkgdir.Record, disabled hooks.Set) ([]string, error) {
	if err := e.runner.Run(hooks.PreUninstall, hookPackage(rec), disabled); err != nil {
		e.record("uninstall", rec, "failed", err.Error())
		return nil, err
	}

	stash, err := e.stashHooks(rec, disabled)
	if err != nil {
		e.logger.Warn("failed to stash hooks for postuninstall", "package", rec.Spec(), "error", err)
	}
	if stash != "" {
		defer func() {
			if err := e.store.DiscardStage(stash); err != nil {
				e.logger.Warn("failed to discard hook stash", "error", err)
			}
		}()
	}

	if err := e.store.DeleteContents(rec.DirectoryName); err != nil {
		e.record("uninstall", rec, "failed", err.Error())
		return nil, err
	}
	if err := e.store.Remove(rec.DirectoryName); err != nil {
		e.record("uninstall", rec, "failed", err.Error())
		return nil, err
	}
	e.logger.Info("uninstalled package", "package", rec.Spec(), "directory", rec.DirectoryName)
	e.record("uninstall", rec, "ok", "")

	var warnings []string
	if stash != "" {
		pkg := hookPackage(rec)
		pkg.Path = stash
		if err := e.runner.Run(hooks.PostUninstall, pkg, disabled); err != nil {
			e.logger.Warn("postuninstall hook failed", "package", rec.Spec(), "error", err)
			warnings = append(warnings, err.Error())
		}
	}
	return warnings, nil
}

// stashHooks copies the package's hooks directory into the staging area so
// the postuninstall script survives content removal. Returns "" when the
// package has no hooks to preserve or the hook is disabled anyway.
func (e *Engine) stashHooks(rec *pkgdir.Record, disabled hooks.Set) (string, error) {
	if disabled.Disabled(hooks.PostUninstall) {
		return "", nil
	}
	script := filepath.Join(rec.Path, hooks.ScriptsDir, string(hooks.PostUninstall))
	if _, err := os.Stat(script); err != nil {
		return "", nil
	}

	stash, err := e.store.NewStage()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(stash, hooks.ScriptsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	data, err := os.ReadFile(script)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, string(hooks.PostUninstall)), data, 0755); err != nil {
		return "", err
	}
	return stash, nil
}
