package locker

import "github.com/gofrs/flock"

// FLock is a Locker backed by flock(2). The lock belongs to the open file
// handle, so the kernel drops it when the process ends.
type FLock struct {
	flock *flock.Flock
}

// NewFLock returns an FLock that must be bound to a path with New before use.
func NewFLock() *FLock {
	return &FLock{}
}

func (l *FLock) New(path string) Locker {
	return &FLock{flock: flock.New(path)}
}

func (l *FLock) TryLock() (bool, error) {
	return l.flock.TryLock()
}

func (l *FLock) Unlock() error {
	return l.flock.Unlock()
}

func (l *FLock) Locked() bool {
	return l.flock != nil && l.flock.Locked()
}

func (l *FLock) Path() string {
	if l.flock == nil {
		return ""
	}
	return l.flock.Path()
}
