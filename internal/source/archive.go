package source

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// archiveExtensions lists the archive forms Fetch accepts.
var archiveExtensions = []string{".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2"}

func isArchive(name string) bool {
	return archiveSuffix(name) != ""
}

func archiveSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// extractArchive unpacks a tar stream (optionally gzip- or bzip2-compressed,
// decided by the specifier's extension) into dir. Entries that would escape
// dir are rejected.
func extractArchive(r io.Reader, name, dir string) error {
	var err error
	switch archiveSuffix(name) {
	case ".tar":
		// Plain tar, no wrapping reader.
	case ".tar.gz", ".tgz":
		r, err = gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("bad gzip stream: %w", err)
		}
	case ".tar.bz2", ".tbz2":
		r, err = bzip2.NewReader(r, nil)
		if err != nil {
			return fmt.Errorf("bad bzip2 stream: %w", err)
		}
	default:
		return fmt.Errorf("unsupported archive %s", name)
	}

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		target, err := safeJoin(dir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode).Perm()|0700); err != nil {
				return fmt.Errorf("creating directory %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", header.Name, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode).Perm())
			if err != nil {
				return fmt.Errorf("creating file %s: %w", header.Name, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extracting %s: %w", header.Name, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("archive entry %s links to absolute path %s", header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", header.Name, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", header.Name, err)
			}
		default:
			// Hard links, devices and the like have no place in a bundle.
			return fmt.Errorf("archive entry %s has unsupported type %c", header.Name, header.Typeflag)
		}
	}
}

// safeJoin joins name under dir and rejects traversal outside it.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes the extraction directory", name)
	}
	return target, nil
}
