package pkgdir

import (
	"os"
	"testing"
	"time"
)

func TestCurrent_NoPointer(t *testing.T) {
	s := newTestStore(t)

	name, err := s.CurrentDirectoryName()
	if err != nil {
		t.Fatalf("CurrentDirectoryName() failed: %v", err)
	}
	if name != "" {
		t.Errorf("CurrentDirectoryName() = %q; want empty", name)
	}

	rec, err := s.Current()
	if err != nil {
		t.Fatalf("Current() failed: %v", err)
	}
	if rec != nil {
		t.Errorf("Current() = %v; want nil", rec)
	}
}

func TestSetCurrent_SwitchesPointer(t *testing.T) {
	s := newTestStore(t)
	a := addPackage(t, s, "api-server", "2.4.0", time.Now())
	b := addPackage(t, s, "api-server", "2.5.0", time.Now().Add(time.Minute))

	if err := s.SetCurrent(a.DirectoryName); err != nil {
		t.Fatalf("SetCurrent(a) failed: %v", err)
	}
	if err := s.SetCurrent(b.DirectoryName); err != nil {
		t.Fatalf("SetCurrent(b) failed: %v", err)
	}

	rec, err := s.Current()
	if err != nil {
		t.Fatalf("Current() failed: %v", err)
	}
	if rec == nil || rec.DirectoryName != b.DirectoryName {
		t.Errorf("Current() = %v; want %s", rec, b.DirectoryName)
	}
}

func TestSetCurrent_UnknownDirectory_Fails(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetCurrent("ghost@1.0.0-20250101T000000"); err == nil {
		t.Error("SetCurrent() on unknown directory should fail")
	}
}

// The pointer is a relative symlink so the packages directory can be moved
// or mounted elsewhere without invalidating it.
func TestSetCurrent_RelativeSymlink(t *testing.T) {
	s := newTestStore(t)
	rec := addPackage(t, s, "api-server", "2.4.0", time.Now())

	if err := s.SetCurrent(rec.DirectoryName); err != nil {
		t.Fatalf("SetCurrent() failed: %v", err)
	}

	target, err := os.Readlink(s.currentPath())
	if err != nil {
		t.Fatalf("Readlink() failed: %v", err)
	}
	want := "../" + rec.DirectoryName
	if target != want {
		t.Errorf("pointer target = %q; want %q", target, want)
	}
}

func TestCurrent_DanglingPointer_TreatedAsAbsent(t *testing.T) {
	s := newTestStore(t)
	rec := addPackage(t, s, "api-server", "2.4.0", time.Now())
	if err := s.SetCurrent(rec.DirectoryName); err != nil {
		t.Fatalf("SetCurrent() failed: %v", err)
	}

	// Delete out from under the pointer.
	if err := s.DeleteContents(rec.DirectoryName); err != nil {
		t.Fatalf("DeleteContents() failed: %v", err)
	}
	if err := s.Remove(rec.DirectoryName); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}

	got, err := s.Current()
	if err != nil {
		t.Fatalf("Current() with dangling pointer failed: %v", err)
	}
	if got != nil {
		t.Errorf("Current() = %v; want nil for dangling pointer", got)
	}
}

func TestClearCurrent(t *testing.T) {
	s := newTestStore(t)
	rec := addPackage(t, s, "api-server", "2.4.0", time.Now())
	if err := s.SetCurrent(rec.DirectoryName); err != nil {
		t.Fatalf("SetCurrent() failed: %v", err)
	}

	if err := s.ClearCurrent(); err != nil {
		t.Fatalf("ClearCurrent() failed: %v", err)
	}
	name, err := s.CurrentDirectoryName()
	if err != nil {
		t.Fatalf("CurrentDirectoryName() failed: %v", err)
	}
	if name != "" {
		t.Errorf("pointer still set to %q after ClearCurrent()", name)
	}

	// Idempotent.
	if err := s.ClearCurrent(); err != nil {
		t.Errorf("second ClearCurrent() = %v; want nil", err)
	}
}
