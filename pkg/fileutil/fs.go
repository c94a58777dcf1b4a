package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS defines the filesystem operations helmfile-deps needs.
type FS interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(filename string) ([]byte, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// AferoFS adapts an afero.Fs to FS.
type AferoFS struct {
	fs afero.Fs
}

// NewAferoFS wraps fsys; a nil fsys means the OS filesystem.
func NewAferoFS(fsys afero.Fs) *AferoFS {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &AferoFS{fs: fsys}
}

// Stat returns file info
func (a *AferoFS) Stat(name string) (os.FileInfo, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return info, nil
}

// ReadFile reads a file
func (a *AferoFS) ReadFile(filename string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return data, nil
}

// WriteFile writes a file, creating parent directories as needed.
func (a *AferoFS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := a.MkdirAll(dir, ReadWriteExecuteUserReadExecuteOthers); err != nil {
			return err
		}
	}
	if err := afero.WriteFile(a.fs, filename, data, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// MkdirAll creates a directory with all parent directories
func (a *AferoFS) MkdirAll(path string, perm os.FileMode) error {
	if err := a.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("failed to create directory path %s: %w", path, err)
	}
	return nil
}

// GetUnderlyingFs returns the wrapped afero.Fs
func (a *AferoFS) GetUnderlyingFs() afero.Fs {
	return a.fs
}

// FileExists reports whether path exists and is a regular file.
func FileExists(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return !info.IsDir(), nil
}

// ReadFileString reads path from fsys and returns its contents as a string.
func ReadFileString(fsys FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
