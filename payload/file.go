package payload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// File is a uniquely named temporary file handed from a command to a relay.
// Whoever holds the payload containing a File must eventually call Release;
// Release deletes the file exactly once no matter how many times it is called.
type File struct {
	path string
	once sync.Once
	err  error
}

// CreateFile creates a new empty file in dir with a random name and the given
// extension, e.g. ".png". The caller must close the returned *os.File, and
// must Release the File if it never reaches a relay.
func CreateFile(dir, ext string) (*File, *os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("couldn't create scratch directory: %w", err)
	}
	p := filepath.Join(dir, uuid.NewString()+ext)
	f, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't create scratch file: %w", err)
	}
	return &File{path: p}, f, nil
}

// Path returns the file's location on disk.
func (f *File) Path() string {
	return f.path
}

// Name returns the base name of the file.
func (f *File) Name() string {
	return filepath.Base(f.path)
}

// Open opens the file for reading.
func (f *File) Open() (*os.File, error) {
	return os.Open(f.path)
}

// Release deletes the file. A file that is already gone is not an error.
func (f *File) Release() error {
	f.once.Do(func() {
		err := os.Remove(f.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.err = err
		}
	})
	return f.err
}
