package locker

import "errors"

var (
	ErrLockHeld              = errors.New("lock already acquired by another process")
	ErrTooManyInterruptions  = errors.New("interrupted too many times while acquiring lock")
	ErrCreatingLockDirectory = errors.New("failed creating lock file directory")
)
