package utils

import (
	"errors"
	"os"

	"github.com/spf13/afero"
)

// RemoveIfExists removes every given path, ignoring the ones that are already
// gone. The first other error is returned after all paths were attempted.
func RemoveIfExists(fs afero.Fs, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SyncDir flushes the directory entry table of dir to stable storage so that
// a rename into it survives a crash.
func SyncDir(fs afero.Fs, dir string) (err error) {
	d, err := fs.Open(dir)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := d.Close()
		if err == nil {
			err = closeErr
		}
	}()
	return d.Sync()
}
