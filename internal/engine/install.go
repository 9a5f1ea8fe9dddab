package engine

import (
	"context"
	"time"

	"github.com/blackwell-systems/hoist/internal/hooks"
	"github.com/blackwell-systems/hoist/internal/manifest"
	"github.com/blackwell-systems/hoist/internal/npm"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
	"github.com/blackwell-systems/hoist/internal/source"
)

// InstallOptions configures one install transaction.
type InstallOptions struct {
	// Source locates the bundle to install.
	Source source.Spec
	// Force allows installing a name+version pair that already exists.
	Force bool
	// NoUse suppresses the activation step after publish.
	NoUse bool
	// SyncMode selects the dependency sync strategy.
	SyncMode npm.Mode
	// DisabledHooks are raw hook names to skip; validated before any side
	// effect against the hooks an install may trigger.
	DisabledHooks []string
}

// InstallResult reports a completed install.
type InstallResult struct {
	Record    *pkgdir.Record
	Activated bool
	// Warnings holds post-hook failures: the state change committed, only
	// the announcement step failed.
	Warnings []string
}

// Install stages, verifies, publishes and (unless suppressed) activates a
// package. No PackageRecord is ever created for a failed install: every
// abort path before publish discards the stage and leaves the packages
// directory untouched.
func (e *Engine) Install(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	disabled, err := hooks.ParseSet(opts.DisabledHooks, hooks.InstallHooks)
	if err != nil {
		return nil, err
	}

	lock, err := e.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Release(e.logger)

	// Lazy housekeeping under the lock: stale stages and orphan directories
	// from crashed prior invocations.
	if err := e.store.SweepStages(); err != nil {
		e.logger.Warn("failed to sweep stale stages", "error", err)
	}
	if removed, err := e.store.CleanOrphans(); err != nil {
		e.logger.Warn("failed to clean orphan directories", "error", err)
	} else if len(removed) > 0 {
		e.logger.Debug("removed orphan directories", "count", len(removed))
	}

	stage, err := e.store.NewStage()
	if err != nil {
		return nil, err
	}
	published := false
	defer func() {
		if !published {
			if err := e.store.DiscardStage(stage); err != nil {
				e.logger.Warn("failed to discard stage", "error", err)
			}
		}
	}()

	e.logger.Info("staging source", "source", opts.Source.Specifier)
	if err := source.Fetch(ctx, opts.Source, stage); err != nil {
		return nil, err
	}

	man, err := manifest.Load(stage)
	if err != nil {
		return nil, err
	}
	if err := man.CheckEngine(Version); err != nil {
		return nil, err
	}

	if !opts.Force {
		records, err := e.store.List()
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.Name == man.Name && rec.Version == man.Version {
				return nil, &AlreadyInstalledError{
					Name:          man.Name,
					Version:       man.Version,
					DirectoryName: rec.DirectoryName,
				}
			}
		}
	}

	stagePkg := hooks.Package{
		Name:    man.Name,
		Version: man.Version,
		Path:    stage,
		Env:     man.Hoist.Env,
	}
	if err := e.runner.Run(hooks.PreInstall, stagePkg, disabled); err != nil {
		return nil, err
	}

	if err := npm.Sync(ctx, stage, opts.SyncMode, e.logger); err != nil {
		return nil, err
	}

	// Commit point: after Publish succeeds the install is irreversible.
	installedAt := time.Now().UTC()
	dirName := e.store.DirectoryName(man.Name, man.Version, installedAt)
	if err := e.store.Publish(stage, dirName); err != nil {
		return nil, err
	}
	published = true

	rec := &pkgdir.Record{
		Name:          man.Name,
		Version:       man.Version,
		DirectoryName: dirName,
		InstalledAt:   installedAt,
		Scripts:       man.Scripts,
		Compatibility: man.Compatibility(),
		Env:           man.Hoist.Env,
		Path:          e.store.ContentPath(dirName),
	}
	if err := e.store.Create(rec); err != nil {
		return nil, err
	}
	e.logger.Info("published package", "package", rec.Spec(), "directory", dirName)
	e.record("install", rec, "ok", "")

	result := &InstallResult{Record: rec}

	if !opts.NoUse {
		warnings, err := e.useLocked(rec, disabled)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			// The install itself committed; activation failed before the
			// pointer moved. Surface the hook failure with the record.
			return result, err
		}
		result.Activated = true
	}

	if err := e.runner.Run(hooks.PostInstall, hookPackage(rec), disabled); err != nil {
		e.logger.Warn("postinstall hook failed", "package", rec.Spec(), "error", err)
		result.Warnings = append(result.Warnings, err.Error())
	}

	return result, nil
}
