package io

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CreateFS defines a file system interface that supports creating files.
// It extends basic file system operations with write capabilities for
// marshaling depot drums.
type CreateFS interface {
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
}

// DirFS is a directory on the host file system, readable as an fs.FS and
// writable as a CreateFS.
type DirFS string

var _ CreateFS = DirFS("")
var _ fs.FS = DirFS("")

// Open opens a file in the directory.
func (dir DirFS) Open(name string) (fs.File, error) {
	return os.DirFS(string(dir)).Open(name)
}

// Create creates, or truncates, a file in the directory.
func (dir DirFS) Create(name string) (file io.WriteCloser, err error) {
	if !fs.ValidPath(name) {
		err = &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
		return
	}

	return os.Create(filepath.Join(string(dir), filepath.FromSlash(name)))
}
