package locker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// MaxAttempts is how many times Acquire calls TryLock when the call keeps
// being interrupted by a signal.
const MaxAttempts = 3

// Acquire takes l without blocking. Only EINTR is retried, at most
// MaxAttempts times in total. A lock held by another process fails with
// ErrLockHeld and any other error is returned wrapped.
//
// There is no matching release: the lock lives as long as the process.
func Acquire(fs afero.Fs, l Locker) error {
	if l.Locked() {
		return nil
	}
	if err := fs.MkdirAll(filepath.Dir(l.Path()), 0o750); err != nil {
		return fmt.Errorf("%w: %s", ErrCreatingLockDirectory, err)
	}

	attempts := 0
	op := func() error {
		attempts++
		ok, err := l.TryLock()
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				log.Debugf("Lock attempt %d on %s interrupted", attempts, l.Path())
				return err
			}
			return backoff.Permanent(fmt.Errorf("acquiring lock at %s: %w", l.Path(), err))
		}
		if !ok {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrLockHeld, l.Path()))
		}
		return nil
	}
	err := backoff.Retry(op, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, MaxAttempts-1))
	if err != nil {
		if errors.Is(err, syscall.EINTR) {
			return fmt.Errorf("%w: %s after %d attempts", ErrTooManyInterruptions, l.Path(), attempts)
		}
		return err
	}

	now := time.Now()
	if err := fs.Chtimes(l.Path(), now, now); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debugf("Could not update lock file times on %s: %v", l.Path(), err)
	}
	log.Debugf("Acquired lock file %s", l.Path())
	return nil
}
