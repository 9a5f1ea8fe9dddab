// Package output provides terminal output utilities for hoist.
//
// This package includes:
//   - Table rendering for installed packages and deployment history
//   - Progress indicators for multi-package operations
//   - Human-readable formatting for sizes and dates
//
// All table rendering uses ASCII characters and ANSI color codes for
// terminal output. Progress indicators are thread-safe.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/hoist/internal/history"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

// ANSI color codes for package state display
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderPackageTable renders the installed package list. currentDir is the
// directory name the current pointer references ("" when unset); the
// matching row is marked with an asterisk.
func RenderPackageTable(records []*pkgdir.Record, currentDir string) string {
	if len(records) == 0 {
		return "No packages installed.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %-24s %-12s %-14s %s\n",
		"Package", "Version", "Installed", "Last Used"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, rec := range records {
		marker := " "
		if rec.DirectoryName == currentDir {
			marker = colorize(colorGreen, "*")
		}
		lastUsed := "never"
		if rec.UsedAt != nil {
			lastUsed = formatRelativeTime(*rec.UsedAt)
		}
		sb.WriteString(fmt.Sprintf("%s %-24s %-12s %-14s %s\n",
			marker,
			truncate(rec.Name, 24),
			truncate(rec.Version, 12),
			formatRelativeTime(rec.InstalledAt),
			lastUsed))
	}

	return sb.String()
}

// RenderPackageTableLong renders the long listing with directory names and
// on-disk sizes. sizes maps directory name to bytes; a missing entry
// renders as "?".
func RenderPackageTableLong(records []*pkgdir.Record, currentDir string, sizes map[string]int64) string {
	if len(records) == 0 {
		return "No packages installed.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %-40s %-8s %-14s %s\n",
		"Directory", "Size", "Installed", "Compatibility"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, rec := range records {
		marker := " "
		if rec.DirectoryName == currentDir {
			marker = colorize(colorGreen, "*")
		}
		size := "?"
		if bytes, ok := sizes[rec.DirectoryName]; ok {
			size = formatSize(bytes)
		}
		compat := rec.Compatibility
		if compat == "" {
			compat = "any"
		}
		sb.WriteString(fmt.Sprintf("%s %-40s %-8s %-14s %s\n",
			marker,
			truncate(rec.DirectoryName, 40),
			size,
			formatRelativeTime(rec.InstalledAt),
			compat))
	}

	return sb.String()
}

// RenderHistoryTable renders recent deployment events, newest first.
func RenderHistoryTable(events []*history.Event) string {
	if len(events) == 0 {
		return "No history recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-14s %-12s %-28s %-8s %s\n",
		"When", "Action", "Package", "Outcome", "Detail"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, ev := range events {
		pkg := ev.Package
		if ev.Version != "" {
			pkg = ev.Package + "@" + ev.Version
		}
		outcome := ev.Outcome
		if ev.Outcome == history.OutcomeFailed {
			outcome = colorize(colorRed, ev.Outcome)
		}
		sb.WriteString(fmt.Sprintf("%-14s %-12s %-28s %-8s %s\n",
			formatRelativeTime(ev.OccurredAt),
			ev.Action,
			truncate(pkg, 28),
			outcome,
			truncate(ev.Detail, 32)))
	}

	return sb.String()
}

// formatSize converts bytes to human-readable size (GB, MB, KB).
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
