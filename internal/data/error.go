package data

import (
	"errors"
	"fmt"
)

var (
	ErrDirectoryNotFound    = errors.New("database directory does not exist")
	ErrNotADirectory        = errors.New("database directory is not a directory")
	ErrDirectoryNotWritable = errors.New("database directory is not writable")
	ErrInvalidFilename      = errors.New("invalid database filename")
	ErrRenamingDatabase     = errors.New("failed moving database into place")
	ErrSettingTimes         = errors.New("failed setting database modification time")
)

// HashMismatchError is returned when a decompressed database does not hash to
// the value the server announced. The decompressed file is kept on disk at
// Path so it can be inspected.
type HashMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("md5 of new database (%s) does not match expected md5 (%s), kept %s", e.Actual, e.Expected, e.Path)
}
