package filestorage

import (
	"errors"
	"io"
	"os"
)

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid file path")

// Storage keeps uploaded document files. Paths are relative to the storage root.
type Storage interface {
	// Save stores content under dir with a generated name ending in ext and returns its relative path and size
	Save(content io.Reader, dir, ext string) (string, int64, error)
	// Open opens a stored file for reading
	Open(relPath string) (*os.File, error)
	// Delete removes a stored file; a missing file is not an error
	Delete(relPath string) error
	// DeleteDir removes a directory and everything under it
	DeleteDir(relDir string) error
}
