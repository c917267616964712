// Package adapter contains filesystem and infrastructure adapters for the
// picobuild CLI.
package adapter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	m "picobuild.dev/pkg/picobuild/internal/model"
)

// ProjectFSAdapter abstracts the filesystem operations the domain layer
// performs on user projects. It hides direct `os` access so the build logic
// can be tested against fakes where useful.
type ProjectFSAdapter interface {
	// Stat returns metadata for a path.
	Stat(path m.Path) (os.FileInfo, error)

	// ReadDir lists the entries of a directory, sorted by filename.
	ReadDir(path m.Path) ([]fs.DirEntry, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// WriteFileAtomic replaces the file at path with content in a single
	// rename, so concurrent readers never observe a partial write.
	WriteFileAtomic(path m.Path, content []byte, perm os.FileMode) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path m.Path, perm os.FileMode) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalProjectFSAdapter is the os-backed implementation of ProjectFSAdapter.
type LocalProjectFSAdapter struct{}

// NewLocalProjectFSAdapter constructs a LocalProjectFSAdapter ready to be
// wired into the build pipeline.
func NewLocalProjectFSAdapter() *LocalProjectFSAdapter {
	return &LocalProjectFSAdapter{}
}

// Stat returns os.FileInfo metadata for the given path.
func (a *LocalProjectFSAdapter) Stat(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ReadDir lists directory entries sorted by filename.
func (a *LocalProjectFSAdapter) ReadDir(path m.Path) ([]fs.DirEntry, error) {
	return os.ReadDir(string(path))
}

// ReadFile loads file contents from disk.
func (a *LocalProjectFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path)) // #nosec G304 - path comes from the scanned project tree
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalProjectFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// WriteFileAtomic writes content to a temporary file in the destination
// directory and renames it over path. The rename is the only mutation a
// reader polling the destination can observe.
func (a *LocalProjectFSAdapter) WriteFileAtomic(path m.Path, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(string(path))

	tmp, err := os.CreateTemp(dir, filepath.Base(string(path))+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, string(path)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// MkdirAll creates a directory and any missing parents.
func (a *LocalProjectFSAdapter) MkdirAll(path m.Path, perm os.FileMode) error {
	return os.MkdirAll(string(path), perm)
}

// JoinPath joins path elements into a single path.
func (a *LocalProjectFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
