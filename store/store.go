// Package store abstracts the filesystem tree the dashboard reads its data
// from. The JSON result files are the database; the store is the only way
// the services touch it.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo describes one file found by the store.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is the file-store capability the aggregation services depend on.
// Directories that do not exist yield zero files, not errors.
type Store interface {
	// List returns the regular files directly inside dir.
	List(dir string) ([]FileInfo, error)
	// Read returns the full contents of one file.
	Read(path string) ([]byte, error)
	// Write replaces the file at path, creating parent directories.
	Write(path string, data []byte) error
	// Stat returns metadata for one file.
	Stat(path string) (FileInfo, error)
	// Glob returns the paths under root matching a doublestar pattern,
	// for example "**/*.spec.ts".
	Glob(root, pattern string) ([]string, error)
}

// DiskStore is the operating-system backed Store.
type DiskStore struct{}

// NewDiskStore creates a disk-backed store.
func NewDiskStore() *DiskStore {
	return &DiskStore{}
}

// List returns the regular files directly inside dir, or an empty slice
// when the directory does not exist.
func (d *DiskStore) List(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// Read returns the full contents of one file.
func (d *DiskStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write replaces the file at path, creating parent directories as needed.
func (d *DiskStore) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Stat returns metadata for one file.
func (d *DiskStore) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:    info.Name(),
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Glob returns the paths under root matching a doublestar pattern. A
// missing root yields no matches.
func (d *DiskStore) Glob(root, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
	if err != nil {
		return nil, err
	}
	return matches, nil
}
