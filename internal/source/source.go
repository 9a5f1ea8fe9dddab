// Package source materializes a package bundle into a staging directory
// from a user-supplied specifier: a local directory, a local archive, or an
// http(s) URL pointing at an archive.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/hoist/internal/manifest"
)

// Spec describes where to fetch a package from.
type Spec struct {
	// Specifier is a directory path, an archive path, or an http(s) URL.
	Specifier string
	// Token, when set, is sent as a bearer credential on remote fetches.
	Token string
}

// Fetch populates stage with the bundle the spec points at. On failure the
// caller discards the stage; Fetch itself never writes outside it.
func Fetch(ctx context.Context, spec Spec, stage string) error {
	switch {
	case strings.HasPrefix(spec.Specifier, "http://"), strings.HasPrefix(spec.Specifier, "https://"):
		return fetchRemote(ctx, spec, stage)
	default:
		return fetchLocal(spec.Specifier, stage)
	}
}

func fetchLocal(path, stage string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("source %s is not accessible: %w", path, err)
	}

	if fi.IsDir() {
		if err := copyTree(path, stage); err != nil {
			return fmt.Errorf("failed to copy source directory %s: %w", path, err)
		}
		return nil
	}

	if !isArchive(path) {
		return fmt.Errorf("source %s is neither a directory nor a supported archive (%s)",
			path, strings.Join(archiveExtensions, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer f.Close()

	if err := extractArchive(f, path, stage); err != nil {
		return fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return flattenSingleRoot(stage)
}

func fetchRemote(ctx context.Context, spec Spec, stage string) error {
	if !isArchive(spec.Specifier) {
		return fmt.Errorf("remote source %s must point at a supported archive (%s)",
			spec.Specifier, strings.Join(archiveExtensions, ", "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.Specifier, nil)
	if err != nil {
		return fmt.Errorf("invalid source URL %s: %w", spec.Specifier, err)
	}
	if spec.Token != "" {
		req.Header.Set("Authorization", "Bearer "+spec.Token)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", spec.Specifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: HTTP %s", spec.Specifier, resp.Status)
	}

	// Download next to the stage so the partial file never pollutes it.
	tmp, err := os.CreateTemp(filepath.Dir(stage), "download-*"+archiveSuffix(spec.Specifier))
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return fmt.Errorf("failed to download %s: %w", spec.Specifier, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind download: %w", err)
	}

	if err := extractArchive(tmp, spec.Specifier, stage); err != nil {
		return fmt.Errorf("failed to extract %s: %w", spec.Specifier, err)
	}
	return flattenSingleRoot(stage)
}

// copyTree copies src into dst, preserving modes and symlinks.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// flattenSingleRoot lifts a lone wrapper directory (the "package/" prefix
// npm pack produces) so the manifest sits at the stage root.
func flattenSingleRoot(stage string) error {
	if _, err := os.Stat(filepath.Join(stage, manifest.Filename)); err == nil {
		return nil
	}

	entries, err := os.ReadDir(stage)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	root := filepath.Join(stage, entries[0].Name())
	inner, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range inner {
		if err := os.Rename(filepath.Join(root, entry.Name()), filepath.Join(stage, entry.Name())); err != nil {
			return fmt.Errorf("failed to flatten archive root: %w", err)
		}
	}
	return os.Remove(root)
}
