package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAppendAndRecent(t *testing.T) {
	l := newTestLog(t)

	events := []*Event{
		{Action: "install", Package: "api-server", Version: "2.4.0", Outcome: OutcomeOK},
		{Action: "use", Package: "api-server", Version: "2.4.0", Outcome: OutcomeOK},
		{Action: "uninstall", Package: "worker", Version: "1.0.0", Outcome: OutcomeFailed, Detail: "preuninstall vetoed"},
	}
	for _, e := range events {
		if err := l.Append(e); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	got, err := l.Recent(0)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d events; want 3", len(got))
	}

	// Newest first.
	if got[0].Action != "uninstall" || got[2].Action != "install" {
		t.Errorf("Recent() order = [%s %s %s]; want newest first",
			got[0].Action, got[1].Action, got[2].Action)
	}
	if got[0].Outcome != OutcomeFailed || got[0].Detail != "preuninstall vetoed" {
		t.Errorf("failed event not preserved: %+v", got[0])
	}
}

func TestRecent_Limit(t *testing.T) {
	l := newTestLog(t)

	for i := 0; i < 5; i++ {
		e := &Event{Action: "install", Package: fmt.Sprintf("pkg%d", i), Outcome: OutcomeOK}
		if err := l.Append(e); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	got, err := l.Recent(2)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d events; want 2", len(got))
	}
	if got[0].Package != "pkg4" {
		t.Errorf("Recent(2)[0].Package = %s; want pkg4", got[0].Package)
	}
}

func TestAppend_DefaultsOccurredAt(t *testing.T) {
	l := newTestLog(t)

	before := time.Now().Add(-time.Minute)
	if err := l.Append(&Event{Action: "install", Package: "api-server", Outcome: OutcomeOK}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	got, err := l.Recent(1)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 1 || got[0].OccurredAt.Before(before) {
		t.Errorf("OccurredAt not defaulted to now: %+v", got)
	}
}

// The log survives reopening: events from a prior invocation remain.
func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := l.Append(&Event{Action: "install", Package: "api-server", Outcome: OutcomeOK}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer l2.Close()

	got, err := l2.Recent(0)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Recent() after reopen returned %d events; want 1", len(got))
	}
}
