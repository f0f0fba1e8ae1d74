package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// CompressedSuffix is appended to a database file name while its
	// compressed download is on disk.
	CompressedSuffix = ".gz"
	// TestSuffix is appended to a database file name while its decompressed,
	// not yet verified, contents are on disk.
	TestSuffix = ".test"
	// LockFileName is the default name of the run lock inside the directory.
	LockFileName = ".geoipupdate.lock"
)

// DatabaseDir is the directory where the databases are installed.
type DatabaseDir struct {
	fs   afero.Fs
	path string
}

// NewDatabaseDir creates a new DatabaseDir instance with the given path as root.
func NewDatabaseDir(fs afero.Fs, path string) (*DatabaseDir, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &DatabaseDir{fs: fs, path: absPath}, nil
}

// Path returns the absolute path of the directory.
func (d *DatabaseDir) Path() string {
	return d.path
}

// DefaultLockPath returns the lock file path used when none is configured.
func (d *DatabaseDir) DefaultLockPath() string {
	return filepath.Join(d.path, LockFileName)
}

// Check verifies the directory exists and is a directory. It does not write
// to the directory.
func (d *DatabaseDir) Check() error {
	info, err := d.fs.Stat(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, d.path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, d.path)
	}
	return nil
}

// CheckWritable verifies new files can be created in the directory by
// creating and removing a scratch file. Callers hold the run lock.
func (d *DatabaseDir) CheckWritable() error {
	scratch, err := afero.TempFile(d.fs, d.path, ".geoipupdate-write-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrDirectoryNotWritable, d.path, err)
	}
	scratch.Close()
	if err := d.fs.Remove(scratch.Name()); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrDirectoryNotWritable, d.path, err)
	}
	return nil
}

// DatabasePath returns the path of the installed database with the given
// server assigned file name. The name must be a plain file name.
func (d *DatabaseDir) DatabasePath(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, "/\\\x00\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return filepath.Join(d.path, filename), nil
}

// CompressedPath returns where the compressed download of databasePath is
// written.
func CompressedPath(databasePath string) string {
	return databasePath + CompressedSuffix
}

// TestPath returns where the decompressed download of databasePath is
// written before it is verified.
func TestPath(databasePath string) string {
	return databasePath + TestSuffix
}
