// Package npm invokes the external package manager to materialize a staged
// package's dependencies before it is published.
package npm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Mode selects the dependency materialization strategy.
type Mode string

const (
	// ModeInstall runs `npm install`.
	ModeInstall Mode = "install"
	// ModeCI runs `npm ci`, which requires a package-lock.json.
	ModeCI Mode = "ci"
	// ModePreferCI runs `npm ci` when a lock file is present and falls back
	// to `npm install` when it is not.
	ModePreferCI Mode = "preferCi"
)

// LockFile is the npm lock file that makes `npm ci` viable.
const LockFile = "package-lock.json"

// ParseMode validates a user-supplied sync mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInstall, ModeCI, ModePreferCI:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid sync mode %q: must be one of: install, ci, preferCi", s)
	}
}

// SyncError reports a failed dependency sync, carrying the trailing command
// output for diagnostics.
type SyncError struct {
	Mode   Mode
	Dir    string
	Output string
	Err    error
}

func (e *SyncError) Error() string {
	msg := fmt.Sprintf("dependency sync (%s) failed in %s: %v", e.Mode, e.Dir, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + tail(out, 20)
	}
	return msg
}

func (e *SyncError) Unwrap() error { return e.Err }

// Sync materializes dependencies for the project at dir using the given
// mode. Production dependencies only; a non-zero exit fails the invocation.
func Sync(ctx context.Context, dir string, mode Mode, logger *log.Logger) error {
	effective := mode
	if mode == ModePreferCI {
		if _, err := os.Stat(filepath.Join(dir, LockFile)); err == nil {
			effective = ModeCI
		} else {
			logger.Debug("no lock file, falling back to npm install", "dir", dir)
			effective = ModeInstall
		}
	}

	args := []string{"install", "--omit=dev", "--no-audit", "--no-fund"}
	if effective == ModeCI {
		args[0] = "ci"
	}

	logger.Debug("syncing dependencies", "dir", dir, "mode", effective)

	cmd := exec.CommandContext(ctx, binary(), args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &SyncError{Mode: effective, Dir: dir, Output: string(output), Err: err}
	}
	return nil
}

// binary returns the package manager executable, overridable for tests and
// alternate npm installs.
func binary() string {
	if b := os.Getenv("HOIST_NPM"); b != "" {
		return b
	}
	return "npm"
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
