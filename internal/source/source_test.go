package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// buildTarGz produces a gzipped tar with the given file contents, keyed by
// entry name.
func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip: %v", err)
	}
	return buf.Bytes()
}

const testManifest = `{"name": "api-server", "version": "2.4.0"}`

func TestFetch_LocalDirectory(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "package.json"), []byte(testManifest), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(src, "lib"), 0755); err != nil {
		t.Fatalf("failed to create source subdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "lib", "index.js"), []byte("ok"), 0755); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	stage := t.TempDir()
	if err := Fetch(context.Background(), Spec{Specifier: src}, stage); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(stage, "package.json")); err != nil {
		t.Errorf("manifest not copied: %v", err)
	}
	fi, err := os.Stat(filepath.Join(stage, "lib", "index.js"))
	if err != nil {
		t.Fatalf("nested file not copied: %v", err)
	}
	if fi.Mode().Perm() != 0755 {
		t.Errorf("file mode = %v; want 0755 preserved", fi.Mode().Perm())
	}
}

func TestFetch_LocalArchive(t *testing.T) {
	data := buildTarGz(t, map[string]string{
		"package.json": testManifest,
		"index.js":     "ok",
	})
	archive := filepath.Join(t.TempDir(), "bundle.tar.gz")
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	stage := t.TempDir()
	if err := Fetch(context.Background(), Spec{Specifier: archive}, stage); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stage, "package.json")); err != nil {
		t.Errorf("manifest not extracted: %v", err)
	}
}

// npm pack wraps everything in a package/ directory; Fetch lifts it so the
// manifest lands at the stage root.
func TestFetch_FlattensSingleRoot(t *testing.T) {
	data := buildTarGz(t, map[string]string{
		"package/package.json": testManifest,
		"package/index.js":     "ok",
	})
	archive := filepath.Join(t.TempDir(), "bundle.tgz")
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	stage := t.TempDir()
	if err := Fetch(context.Background(), Spec{Specifier: archive}, stage); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stage, "package.json")); err != nil {
		t.Errorf("manifest not at stage root after flatten: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stage, "package")); !os.IsNotExist(err) {
		t.Error("wrapper directory still present after flatten")
	}
}

func TestFetch_RejectsTraversal(t *testing.T) {
	data := buildTarGz(t, map[string]string{
		"../escape.txt": "nope",
	})
	archive := filepath.Join(t.TempDir(), "evil.tar.gz")
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	stage := t.TempDir()
	if err := Fetch(context.Background(), Spec{Specifier: archive}, stage); err == nil {
		t.Error("Fetch() should reject path traversal entries")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(stage), "escape.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry was written outside the stage")
	}
}

func TestFetch_UnsupportedLocalFile(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "bundle.zip")
	if err := os.WriteFile(plain, []byte("zip"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := Fetch(context.Background(), Spec{Specifier: plain}, t.TempDir()); err == nil {
		t.Error("Fetch() should reject unsupported archive extensions")
	}
}

func TestFetch_Remote(t *testing.T) {
	data := buildTarGz(t, map[string]string{"package.json": testManifest})

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(data)
	}))
	defer srv.Close()

	stage := t.TempDir()
	spec := Spec{Specifier: srv.URL + "/bundle.tar.gz", Token: "s3cret"}
	if err := Fetch(context.Background(), spec, stage); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stage, "package.json")); err != nil {
		t.Errorf("manifest not extracted from remote archive: %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization header = %q; want bearer token", gotAuth)
	}
}

func TestFetch_RemoteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := Fetch(context.Background(), Spec{Specifier: srv.URL + "/missing.tgz"}, t.TempDir())
	if err == nil {
		t.Error("Fetch() should fail on HTTP 404")
	}
}
