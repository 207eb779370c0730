// Package fs provides read-only file system views for configuration loading and planning lookups.
package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/draft/internal/core/ports"
)

// OSFS implements ports.FileSystem using the operating system.
type OSFS struct{}

// NewOSFS creates a new OSFS instance.
func NewOSFS() ports.FileSystem {
	return &OSFS{}
}

// Stat returns file info for the given path.
func (o *OSFS) Stat(path string) (iofs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at path.
func (o *OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is validated by caller
	return os.ReadFile(path)
}

// Glob returns the directories matching pattern.
func (o *OSFS) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		if o.IsDir(m) {
			dirs = append(dirs, m)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

// Exists reports whether path exists.
func (o *OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory.
func (o *OSFS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// MapFS adapts an fs.FS such as fstest.MapFS, mounted at Root, to ports.FileSystem.
type MapFS struct {
	FS   iofs.FS
	Root string // simulated root path
}

// NewMapFS creates a new MapFS with the given root path and file system.
func NewMapFS(root string, fsys iofs.FS) *MapFS {
	return &MapFS{
		FS:   fsys,
		Root: filepath.Clean(root),
	}
}

// Stat returns file info for the given path.
func (m *MapFS) Stat(path string) (iofs.FileInfo, error) {
	return iofs.Stat(m.FS, m.toRelPath(path))
}

// ReadFile reads the entire file at path.
func (m *MapFS) ReadFile(path string) ([]byte, error) {
	return iofs.ReadFile(m.FS, m.toRelPath(path))
}

// Glob returns the directories matching pattern as absolute paths.
func (m *MapFS) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(m.FS, m.toRelPath(pattern))
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, rel := range matches {
		abs := filepath.Join(m.Root, filepath.FromSlash(rel))
		if m.IsDir(abs) {
			dirs = append(dirs, abs)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

// Exists reports whether path exists.
func (m *MapFS) Exists(path string) bool {
	_, err := m.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory.
func (m *MapFS) IsDir(path string) bool {
	info, err := m.Stat(path)
	return err == nil && info.IsDir()
}

// toRelPath converts an absolute path to a slash-separated path within the file system.
// Paths outside the root are returned unchanged and fail downstream with "file not found".
func (m *MapFS) toRelPath(absPath string) string {
	if !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}
	if absPath == m.Root {
		return "."
	}
	if m.Root != "/" && !strings.HasPrefix(absPath, m.Root+string(filepath.Separator)) {
		return absPath
	}
	rel := strings.TrimPrefix(absPath, m.Root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	return filepath.ToSlash(rel)
}
