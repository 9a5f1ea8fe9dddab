// Package hooks runs the lifecycle scripts a package may ship under its
// hooks/ directory. The engine never inspects hook contents; only the exit
// status matters. pre* hooks can veto a transition, post* hooks cannot.
package hooks

import (
	"fmt"
	"sort"
	"strings"
)

// Hook is one of the fixed lifecycle checkpoints.
type Hook string

const (
	PreInstall    Hook = "preinstall"
	PostInstall   Hook = "postinstall"
	PreUse        Hook = "preuse"
	PostUse       Hook = "postuse"
	PreUninstall  Hook = "preuninstall"
	PostUninstall Hook = "postuninstall"
)

// All lists every hook hoist knows, in lifecycle order.
var All = []Hook{PreInstall, PostInstall, PreUse, PostUse, PreUninstall, PostUninstall}

// InstallHooks are the hooks an install may trigger. Install includes the
// use transition unless suppressed, so the use hooks are legal to disable.
var InstallHooks = []Hook{PreInstall, PostInstall, PreUse, PostUse}

// UseHooks are the hooks a use transition may trigger.
var UseHooks = []Hook{PreUse, PostUse}

// UninstallHooks are the hooks uninstall and clean may trigger.
var UninstallHooks = []Hook{PreUninstall, PostUninstall}

// Set is a disabled-hooks selection, validated against a command's legal
// hooks before the engine performs any side effect.
type Set map[Hook]bool

// Disabled reports whether h is in the set.
func (s Set) Disabled(h Hook) bool { return s[h] }

// InvalidHookNameError reports a disabled-hook name that is not legal for
// the command being run. It is a configuration error: it must surface before
// any side effect occurs.
type InvalidHookNameError struct {
	Name  string
	Legal []Hook
}

func (e *InvalidHookNameError) Error() string {
	names := make([]string, len(e.Legal))
	for i, h := range e.Legal {
		names[i] = string(h)
	}
	return fmt.Sprintf("unknown hook %q: valid hooks for this command are %s",
		e.Name, strings.Join(names, ", "))
}

// ParseSet validates the user-supplied hook names against the hooks legal
// for the current command and returns them as a Set.
func ParseSet(names []string, legal []Hook) (Set, error) {
	set := make(Set, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		ok := false
		for _, h := range legal {
			if string(h) == name {
				ok = true
				break
			}
		}
		if !ok {
			sorted := append([]Hook(nil), legal...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			return nil, &InvalidHookNameError{Name: raw, Legal: sorted}
		}
		set[Hook(name)] = true
	}
	return set, nil
}
