// Package pkgdir owns the on-disk state of one packages directory: the
// per-instance descriptor records, the staging area, and the current-pointer
// symlink. Every publish step is an atomic rename so that readers never
// observe a half-written record or package directory.
package pkgdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// metaDirName is the bookkeeping directory inside a packages directory.
	metaDirName = ".hoist"

	recordsDirName = "records"
	stagingDirName = "staging"
	currentName    = "current"
	lockName       = "lock"
	historyDBName  = "history.db"
)

// ErrNotFound is returned by Get when no record exists for a directory name.
var ErrNotFound = errors.New("package record not found")

// Store provides record and pointer operations for one packages directory.
type Store struct {
	dir string
}

// New returns a Store for the given packages directory, creating the
// bookkeeping directories if needed.
func New(packagesDir string) (*Store, error) {
	abs, err := filepath.Abs(packagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve packages directory: %w", err)
	}
	s := &Store{dir: abs}
	for _, d := range []string{s.metaDir(), s.recordsDir(), s.stagingDir()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return s, nil
}

// Dir returns the absolute packages directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) metaDir() string    { return filepath.Join(s.dir, metaDirName) }
func (s *Store) recordsDir() string { return filepath.Join(s.metaDir(), recordsDirName) }
func (s *Store) stagingDir() string { return filepath.Join(s.metaDir(), stagingDirName) }
func (s *Store) currentPath() string {
	return filepath.Join(s.metaDir(), currentName)
}

// LockPath returns the lock file location for this packages directory.
func (s *Store) LockPath() string { return filepath.Join(s.metaDir(), lockName) }

// HistoryDBPath returns the audit log database location.
func (s *Store) HistoryDBPath() string { return filepath.Join(s.metaDir(), historyDBName) }

// ContentPath returns where a package's extracted contents live.
func (s *Store) ContentPath(directoryName string) string {
	return filepath.Join(s.dir, directoryName)
}

func (s *Store) recordPath(directoryName string) string {
	return filepath.Join(s.recordsDir(), directoryName+".json")
}

// List returns all valid records ordered by install time, then directory
// name. Corrupt or partial entries are skipped; they never fail enumeration.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.recordsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read records directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := s.load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Corrupt descriptor or missing contents: excluded, not fatal.
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].InstalledAt.Equal(records[j].InstalledAt) {
			return records[i].InstalledAt.Before(records[j].InstalledAt)
		}
		return records[i].DirectoryName < records[j].DirectoryName
	})

	return records, nil
}

// Get returns the record for directoryName, or ErrNotFound.
func (s *Store) Get(directoryName string) (*Record, error) {
	rec, err := s.load(directoryName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, directoryName)
		}
		return nil, err
	}
	return rec, nil
}

// load reads and validates one descriptor. A record whose content directory
// is gone counts as partial and is reported as not-exist.
func (s *Store) load(directoryName string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(directoryName))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt descriptor for %s: %w", directoryName, err)
	}
	if rec.DirectoryName != directoryName || rec.Name == "" || rec.Version == "" {
		return nil, fmt.Errorf("corrupt descriptor for %s: inconsistent fields", directoryName)
	}

	rec.Path = s.ContentPath(directoryName)
	if fi, err := os.Stat(rec.Path); err != nil || !fi.IsDir() {
		return nil, os.ErrNotExist
	}

	return &rec, nil
}

// Create publishes a descriptor for a package whose contents are already in
// place. The write is temp-file-then-rename so a concurrent List never sees
// a half-written record.
func (s *Store) Create(rec *Record) error {
	if rec.DirectoryName == "" {
		return fmt.Errorf("record has no directory name")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.DirectoryName, err)
	}
	return s.writeRecord(rec.DirectoryName, data)
}

// Remove deletes the descriptor for directoryName. Callers must delete the
// package contents first so a crash between the two steps leaves an orphan
// directory (cleaned lazily) rather than a dangling record.
func (s *Store) Remove(directoryName string) error {
	if err := os.Remove(s.recordPath(directoryName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove record %s: %w", directoryName, err)
	}
	return nil
}

// DeleteContents removes a package's content directory.
func (s *Store) DeleteContents(directoryName string) error {
	if err := os.RemoveAll(s.ContentPath(directoryName)); err != nil {
		return fmt.Errorf("failed to remove contents of %s: %w", directoryName, err)
	}
	return nil
}

// Touch updates UsedAt, the only in-place record mutation hoist performs.
func (s *Store) Touch(directoryName string, usedAt time.Time) error {
	rec, err := s.Get(directoryName)
	if err != nil {
		return err
	}
	t := usedAt.UTC()
	rec.UsedAt = &t

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", directoryName, err)
	}
	return s.writeRecord(directoryName, data)
}

func (s *Store) writeRecord(directoryName string, data []byte) error {
	tmp := s.recordPath(directoryName) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", directoryName, err)
	}
	if err := os.Rename(tmp, s.recordPath(directoryName)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish record %s: %w", directoryName, err)
	}
	return nil
}

// DirectoryName derives a unique on-disk name for a new install. The base
// form is name@version-timestamp; a numeric suffix resolves collisions from
// repeated installs within the same second (callers hold the lock).
func (s *Store) DirectoryName(name, version string, installedAt time.Time) string {
	base := fmt.Sprintf("%s@%s-%s", name, version, installedAt.UTC().Format("20060102T150405"))
	candidate := base
	for n := 2; s.exists(candidate); n++ {
		candidate = fmt.Sprintf("%s.%d", base, n)
	}
	return candidate
}

func (s *Store) exists(directoryName string) bool {
	if _, err := os.Lstat(s.recordPath(directoryName)); err == nil {
		return true
	}
	if _, err := os.Lstat(s.ContentPath(directoryName)); err == nil {
		return true
	}
	return false
}

// CleanOrphans removes content directories that have no descriptor: the
// residue of an aborted install or a crash between content removal and
// record removal. Returns the directory names it removed.
func (s *Store) CleanOrphans() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read packages directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == metaDirName {
			continue
		}
		if _, err := os.Lstat(s.recordPath(entry.Name())); err == nil {
			continue
		}
		if err := os.RemoveAll(s.ContentPath(entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove orphan %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
