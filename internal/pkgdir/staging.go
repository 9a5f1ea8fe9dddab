package pkgdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewStage creates an empty staging directory for an uncommitted install.
// Stages live under the packages directory so Publish is a same-filesystem
// rename.
func (s *Store) NewStage() (string, error) {
	dir, err := os.MkdirTemp(s.stagingDir(), fmt.Sprintf("%d-", os.Getpid()))
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// DiscardStage removes a staging directory and everything in it. Safe to
// call on every abort path; only paths inside the staging area are accepted.
func (s *Store) DiscardStage(stage string) error {
	if stage == "" {
		return nil
	}
	rel, err := filepath.Rel(s.stagingDir(), stage)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to discard %s: not a staging directory", stage)
	}
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("failed to discard stage %s: %w", stage, err)
	}
	return nil
}

// Publish atomically moves a fully-written stage into the packages directory
// under directoryName. This is the irreversible commit point of an install;
// the descriptor is created by the caller immediately afterwards.
func (s *Store) Publish(stage, directoryName string) error {
	dest := s.ContentPath(directoryName)
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("cannot publish %s: destination already exists", directoryName)
	}
	if err := os.Rename(stage, dest); err != nil {
		return fmt.Errorf("failed to publish %s: %w", directoryName, err)
	}
	return nil
}

// SweepStages removes leftover staging directories from prior invocations.
// Called under the lock before a new install stages its source.
func (s *Store) SweepStages() error {
	entries, err := os.ReadDir(s.stagingDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.stagingDir(), entry.Name())); err != nil {
			return fmt.Errorf("failed to sweep stale stage %s: %w", entry.Name(), err)
		}
	}
	return nil
}
