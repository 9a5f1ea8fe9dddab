// Package resolve maps user-supplied target strings to installed package
// records. Supported forms, tried in order: the literal "current", an exact
// directory name, name@version, a bare package name, and finally a unique
// directory-name prefix.
package resolve

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

// CurrentTarget is the literal indicator for "the current package".
const CurrentTarget = "current"

// NotFoundError reports a target that matched no installed package.
type NotFoundError struct {
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no installed package matches %q", e.Target)
}

// AmbiguousError reports a prefix that matched more than one installed
// directory. The resolver never guesses.
type AmbiguousError struct {
	Target     string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("target %q is ambiguous: matches %s",
		e.Target, strings.Join(e.Candidates, ", "))
}

// Resolve maps target to exactly one installed record.
func Resolve(store *pkgdir.Store, target string) (*pkgdir.Record, error) {
	if target == "" || target == CurrentTarget {
		rec, err := store.Current()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, &NotFoundError{Target: CurrentTarget}
		}
		return rec, nil
	}

	records, err := store.List()
	if err != nil {
		return nil, err
	}

	// Exact directory name wins over every other interpretation.
	for _, rec := range records {
		if rec.DirectoryName == target {
			return rec, nil
		}
	}

	// name@version: exact pair, newest instance. The "@" split is from the
	// right so scoped names like @acme/app@1.2.0 resolve correctly.
	if i := strings.LastIndex(target, "@"); i > 0 {
		name, version := target[:i], target[i+1:]
		if rec := newestMatch(records, name, version); rec != nil {
			return rec, nil
		}
	}

	// Bare name: the currently-used instance of that name, else the highest
	// version (ties broken by install time — List is install-ordered).
	if rec, err := byName(store, records, target); err != nil || rec != nil {
		return rec, err
	}

	// Unique directory-name prefix.
	var candidates []string
	var match *pkgdir.Record
	for _, rec := range records {
		if strings.HasPrefix(rec.DirectoryName, target) {
			candidates = append(candidates, rec.DirectoryName)
			match = rec
		}
	}
	switch len(candidates) {
	case 0:
		return nil, &NotFoundError{Target: target}
	case 1:
		return match, nil
	default:
		return nil, &AmbiguousError{Target: target, Candidates: candidates}
	}
}

// newestMatch returns the most recently installed record with the exact
// name and version, or nil. records are install-ordered, so the last match
// is the newest.
func newestMatch(records []*pkgdir.Record, name, version string) *pkgdir.Record {
	var found *pkgdir.Record
	for _, rec := range records {
		if rec.Name == name && rec.Version == version {
			found = rec
		}
	}
	return found
}

// byName resolves a bare package name, preferring the current instance.
func byName(store *pkgdir.Store, records []*pkgdir.Record, name string) (*pkgdir.Record, error) {
	var named []*pkgdir.Record
	for _, rec := range records {
		if rec.Name == name {
			named = append(named, rec)
		}
	}
	if len(named) == 0 {
		return nil, nil
	}

	currentDir, err := store.CurrentDirectoryName()
	if err != nil {
		return nil, err
	}
	for _, rec := range named {
		if rec.DirectoryName == currentDir {
			return rec, nil
		}
	}

	best := named[0]
	bestVer, bestErr := semver.NewVersion(best.Version)
	for _, rec := range named[1:] {
		v, err := semver.NewVersion(rec.Version)
		if bestErr != nil || (err == nil && !v.LessThan(bestVer)) {
			best, bestVer, bestErr = rec, v, err
		}
	}
	return best, nil
}
