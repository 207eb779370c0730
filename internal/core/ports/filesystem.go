package ports

import "io/fs"

// FileSystem is a read-only view of the file system used for configuration reads
// and for checks that decide the shape of a task.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Glob returns the directories matching a doublestar pattern, sorted.
	Glob(pattern string) ([]string, error)
	// Exists reports whether path exists.
	Exists(path string) bool
	// IsDir reports whether path is an existing directory.
	IsDir(path string) bool
}
