package undo

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements FileSystem using the operating system,
// adapted from the teacher's vfs.OSFS (one method per stdlib call).
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

func (OSFileSystem) Open(path string) (io.ReadCloser, error) { return os.Open(path) }

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Fsync(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSFileSystem) Remove(path string) error { return os.Remove(path) }

func (OSFileSystem) SetPerm(path string, perm fs.FileMode) error {
	return os.Chmod(path, perm)
}

func (OSFileSystem) ResolveSymlink(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
