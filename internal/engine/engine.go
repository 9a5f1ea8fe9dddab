// Package engine orchestrates install, use, uninstall and clean as
// multi-step transactions over one packages directory. It is the only
// component that acquires the directory lock; hooks, dependency sync and
// metadata writes all happen while holding it. Informational reads go
// straight to the pkgdir store and take no lock.
package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blackwell-systems/hoist/internal/history"
	"github.com/blackwell-systems/hoist/internal/hooks"
	"github.com/blackwell-systems/hoist/internal/lockfile"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

// Version is the engine version packages declare compatibility against via
// engines.hoist in their manifest.
const Version = "0.4.2"

// AlreadyInstalledError reports an install of a name+version pair that is
// already present, without --force.
type AlreadyInstalledError struct {
	Name          string
	Version       string
	DirectoryName string
}

func (e *AlreadyInstalledError) Error() string {
	return fmt.Sprintf("%s@%s is already installed as %s (use --force to install another instance)",
		e.Name, e.Version, e.DirectoryName)
}

// GuardViolationError reports an attempt to uninstall the package the
// current pointer references.
type GuardViolationError struct {
	DirectoryName string
}

func (e *GuardViolationError) Error() string {
	return fmt.Sprintf("%s is the current package; use another package before uninstalling it",
		e.DirectoryName)
}

// Engine performs deployment operations against one packages directory.
type Engine struct {
	store  *pkgdir.Store
	runner *hooks.Runner
	logger *log.Logger
	hist   *history.Log
}

// New builds an Engine over store. extraEnv (the config env mapping) is
// injected into every hook invocation. The history log is best-effort: if
// it cannot be opened the engine still works, it just records nothing.
func New(store *pkgdir.Store, extraEnv map[string]string, logger *log.Logger) *Engine {
	e := &Engine{
		store:  store,
		runner: hooks.NewRunner(store.Dir(), extraEnv, logger),
		logger: logger,
	}

	hist, err := history.Open(store.HistoryDBPath())
	if err != nil {
		logger.Warn("history log unavailable", "error", err)
	} else {
		e.hist = hist
	}
	return e
}

// Close releases the engine's history log handle.
func (e *Engine) Close() error {
	if e.hist == nil {
		return nil
	}
	return e.hist.Close()
}

// Store exposes the underlying package store for informational reads.
func (e *Engine) Store() *pkgdir.Store { return e.store }

// lock acquires the packages-directory lock, failing fast when held.
func (e *Engine) lock() (*lockfile.Handle, error) {
	return lockfile.Acquire(e.store.LockPath(), e.logger)
}

// record appends a history event, never failing the calling operation.
func (e *Engine) record(action string, rec *pkgdir.Record, outcome, detail string) {
	if e.hist == nil {
		return
	}
	ev := &history.Event{
		OccurredAt: time.Now(),
		Action:     action,
		Outcome:    outcome,
		Detail:     detail,
	}
	if rec != nil {
		ev.Package = rec.Name
		ev.Version = rec.Version
		ev.DirectoryName = rec.DirectoryName
	}
	if err := e.hist.Append(ev); err != nil {
		e.logger.Warn("failed to record history event", "action", action, "error", err)
	}
}

// hookPackage adapts a record to the hook runner's target shape.
func hookPackage(rec *pkgdir.Record) hooks.Package {
	return hooks.Package{
		Name:    rec.Name,
		Version: rec.Version,
		Path:    rec.Path,
		Env:     rec.Env,
	}
}
