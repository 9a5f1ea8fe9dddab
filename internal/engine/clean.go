package engine

import (
	"github.com/blackwell-systems/hoist/internal/hooks"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

// CleanOptions configures a clean sweep.
type CleanOptions struct {
	DisabledHooks []string
	// OnItem, when set, is called before each package's removal sequence.
	// Used by the CLI for progress reporting.
	OnItem func(rec *pkgdir.Record)
}

// CleanFailure records one package that could not be removed during clean.
type CleanFailure struct {
	Record *pkgdir.Record
	Err    error
}

// CleanResult reports a completed clean sweep.
type CleanResult struct {
	Removed  []*pkgdir.Record
	Failures []CleanFailure
	Warnings []string
}

// Clean removes every installed package except the one the current pointer
// references, under a single lock. Per-item failures are aggregated and do
// not abort the remaining items.
func (e *Engine) Clean(opts CleanOptions) (*CleanResult, error) {
	disabled, err := hooks.ParseSet(opts.DisabledHooks, hooks.UninstallHooks)
	if err != nil {
		return nil, err
	}

	lock, err := e.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Release(e.logger)

	if removed, err := e.store.CleanOrphans(); err != nil {
		e.logger.Warn("failed to clean orphan directories", "error", err)
	} else if len(removed) > 0 {
		e.logger.Debug("removed orphan directories", "count", len(removed))
	}

	records, err := e.store.List()
	if err != nil {
		return nil, err
	}
	currentDir, err := e.store.CurrentDirectoryName()
	if err != nil {
		return nil, err
	}

	result := &CleanResult{}
	for _, rec := range records {
		if rec.DirectoryName == currentDir {
			continue
		}
		if opts.OnItem != nil {
			opts.OnItem(rec)
		}

		warnings, err := e.removeLocked(rec, disabled)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			e.record("clean-item", rec, "failed", err.Error())
			result.Failures = append(result.Failures, CleanFailure{Record: rec, Err: err})
			continue
		}
		result.Removed = append(result.Removed, rec)
	}

	return result, nil
}
