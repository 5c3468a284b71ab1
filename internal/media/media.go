// Package media packs and unpacks the binary asset archive that travels
// alongside an export bundle. Entry paths inside the archive are relative
// to the source site's uploads root and are re-rooted verbatim under the
// destination's uploads directory.
package media

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks every file in the archive into destDir, creating
// directories as needed. Identically-named destination files are
// overwritten; there is no per-file conflict detection. Returns the number
// of files written.
func Extract(archivePath, destDir string) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open media archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return count, err
		}

		if err := extractFile(f, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Count returns the number of files in the archive without extracting.
func Count(archivePath string) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open media archive: %w", err)
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			count++
		}
	}
	return count, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}

// safeJoin resolves an archive entry path under root, rejecting entries
// that would escape it.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes uploads directory", name)
	}
	return target, nil
}

// Pack zips the contents of srcDir into archivePath, storing paths
// relative to srcDir. Returns the number of files packed.
func Pack(srcDir, archivePath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create archive directory: %w", err)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create media archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	count := 0

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", rel, err)
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		if _, err := io.Copy(entry, src); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		w.Close()
		return 0, err
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize media archive: %w", err)
	}
	return count, nil
}
