package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/hoist/internal/history"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

func TestRenderPackageTable_Empty(t *testing.T) {
	got := RenderPackageTable(nil, "")
	if got != "No packages installed.\n" {
		t.Errorf("RenderPackageTable(nil) = %q", got)
	}
}

func TestRenderPackageTable_MarksCurrent(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	usedAt := time.Now().Add(-2 * time.Hour)
	records := []*pkgdir.Record{
		{Name: "api-server", Version: "2.3.0", DirectoryName: "api-server@2.3.0-20250101T000000", InstalledAt: time.Now().Add(-48 * time.Hour)},
		{Name: "api-server", Version: "2.4.0", DirectoryName: "api-server@2.4.0-20250201T000000", InstalledAt: time.Now().Add(-time.Hour), UsedAt: &usedAt},
	}

	got := RenderPackageTable(records, "api-server@2.4.0-20250201T000000")
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines; want header + rule + 2 rows", len(lines))
	}
	if strings.HasPrefix(lines[2], "*") {
		t.Errorf("non-current row marked: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "*") {
		t.Errorf("current row not marked: %q", lines[3])
	}
	if !strings.Contains(lines[2], "never") {
		t.Errorf("never-used row should say never: %q", lines[2])
	}
}

func TestRenderPackageTableLong_SizesAndFallback(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	records := []*pkgdir.Record{
		{Name: "a", Version: "1.0.0", DirectoryName: "a@1.0.0-20250101T000000", InstalledAt: time.Now()},
		{Name: "b", Version: "1.0.0", DirectoryName: "b@1.0.0-20250101T000000", InstalledAt: time.Now()},
	}
	sizes := map[string]int64{"a@1.0.0-20250101T000000": 3 * 1024 * 1024}

	got := RenderPackageTableLong(records, "", sizes)
	if !strings.Contains(got, "3 MB") {
		t.Errorf("known size missing: %q", got)
	}
	if !strings.Contains(got, "?") {
		t.Errorf("unknown size should render as ?: %q", got)
	}
}

func TestRenderHistoryTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	events := []*history.Event{
		{OccurredAt: time.Now(), Action: "install", Package: "api-server", Version: "2.4.0", Outcome: history.OutcomeOK},
		{OccurredAt: time.Now(), Action: "uninstall", Package: "worker", Outcome: history.OutcomeFailed, Detail: "vetoed"},
	}

	got := RenderHistoryTable(events)
	if !strings.Contains(got, "api-server@2.4.0") {
		t.Errorf("package@version missing: %q", got)
	}
	if !strings.Contains(got, "vetoed") {
		t.Errorf("detail missing: %q", got)
	}

	if empty := RenderHistoryTable(nil); empty != "No history recorded.\n" {
		t.Errorf("RenderHistoryTable(nil) = %q", empty)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q; want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{time.Now().Add(-30 * time.Second), "just now"},
		{time.Now().Add(-5 * time.Minute), "5 minutes ago"},
		{time.Now().Add(-3 * time.Hour), "3 hours ago"},
		{time.Now().Add(-2 * 24 * time.Hour), "2 days ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime() = %q; want %q", got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a-very-long-package-name", 10); got != "a-very-..." {
		t.Errorf("truncate() = %q; want a-very-...", got)
	}
}
