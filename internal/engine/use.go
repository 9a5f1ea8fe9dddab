package engine

import (
	"time"

	"github.com/blackwell-systems/hoist/internal/hooks"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
	"github.com/blackwell-systems/hoist/internal/resolve"
)

// UseOptions configures one use (activation) transaction.
type UseOptions struct {
	DisabledHooks []string
}

// UseResult reports a completed activation.
type UseResult struct {
	Record   *pkgdir.Record
	Warnings []string
}

// Use resolves target and atomically switches the current pointer to it.
// The preuse hook runs before the pointer is touched and can veto the
// switch; a postuse failure is reported but the switch stands.
func (e *Engine) Use(target string, opts UseOptions) (*UseResult, error) {
	disabled, err := hooks.ParseSet(opts.DisabledHooks, hooks.UseHooks)
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

	warnings, err := e.useLocked(rec, disabled)
	if err != nil {
		return nil, err
	}
	return &UseResult{Record: rec, Warnings: warnings}, nil
}

// useLocked performs the use transition with the lock already held, so an
// enclosing install reuses it without re-acquisition.
func (e *Engine) useLocked(rec *pkgdir.Record, disabled hooks.Set) ([]string, error) {
	if err := e.runner.Run(hooks.PreUse, hookPackage(rec), disabled); err != nil {
		e.record("use", rec, "failed", err.Error())
		return nil, err
	}

	if err := e.store.SetCurrent(rec.DirectoryName); err != nil {
		e.record("use", rec, "failed", err.Error())
		return nil, err
	}
	if err := e.store.Touch(rec.DirectoryName, time.Now()); err != nil {
		// The switch landed; a failed UsedAt update is not worth unwinding.
		e.logger.Warn("failed to update usedAt", "package", rec.Spec(), "error", err)
	}
	e.logger.Info("switched current", "package", rec.Spec(), "directory", rec.DirectoryName)
	e.record("use", rec, "ok", "")

	var warnings []string
	if err := e.runner.Run(hooks.PostUse, hookPackage(rec), disabled); err != nil {
		e.logger.Warn("postuse hook failed", "package", rec.Spec(), "error", err)
		warnings = append(warnings, err.Error())
	}
	return warnings, nil
}
