package pkgdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentDirectoryName returns the directory name the current pointer
// references, or "" when no package is current.
func (s *Store) CurrentDirectoryName() (string, error) {
	target, err := os.Readlink(s.currentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read current pointer: %w", err)
	}
	return filepath.Base(target), nil
}

// Current returns the record the current pointer resolves to, or nil when
// the pointer is absent. A dangling pointer (target record gone) is treated
// as absent rather than an error so informational reads stay usable.
func (s *Store) Current() (*Record, error) {
	name, err := s.CurrentDirectoryName()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	rec, err := s.Get(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// SetCurrent atomically switches the current pointer to directoryName. The
// switch is symlink-create-then-rename: the old target stays current until
// the rename lands, so a crash mid-switch never leaves "no current".
func (s *Store) SetCurrent(directoryName string) error {
	if _, err := s.Get(directoryName); err != nil {
		return fmt.Errorf("cannot point current at %s: %w", directoryName, err)
	}

	// Relative target keeps the packages directory relocatable.
	target := filepath.Join("..", directoryName)
	tmp := s.currentPath() + fmt.Sprintf(".%d.tmp", os.Getpid())

	os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("failed to stage current pointer: %w", err)
	}
	if err := os.Rename(tmp, s.currentPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to switch current pointer: %w", err)
	}
	return nil
}

// ClearCurrent removes the pointer entirely. Only used when the referenced
// package no longer exists; normal switches go through SetCurrent.
func (s *Store) ClearCurrent() error {
	if err := os.Remove(s.currentPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear current pointer: %w", err)
	}
	return nil
}
