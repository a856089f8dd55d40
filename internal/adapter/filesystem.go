package adapter

import (
	"io"
	"os"
)

// FileSystem defines an interface for file system operations to enable mocking
type FileSystem interface {
	// CreateTemp creates a new temporary file in the default temp directory
	CreateTemp(pattern string) (File, error)

	// Open opens the named file for reading
	Open(name string) (io.ReadCloser, error)

	// Remove removes the named file
	Remove(name string) error
}

// File defines an interface for file operations
type File interface {
	io.Writer
	io.Closer

	// Name returns the file's path
	Name() string
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

// CreateTemp creates a new temporary file in the default temp directory
func (fs *RealFileSystem) CreateTemp(pattern string) (File, error) {
	return os.CreateTemp("", pattern)
}

// Open opens the named file for reading
func (fs *RealFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(name) //nolint:gosec,G304
}

// Remove removes the named file
func (fs *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}
