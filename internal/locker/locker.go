// Package locker guards the database directory against concurrent runs.
package locker

// Locker is an advisory, whole-file lock. Implementations must release the
// lock when the owning process exits, so a crashed run never leaves a stale
// lock behind.
type Locker interface {
	// New returns a Locker for the given path. The lock file is created on
	// first use.
	New(path string) Locker

	// TryLock attempts to take the lock without blocking. It reports false
	// with a nil error when the lock is held by someone else.
	TryLock() (bool, error)

	// Unlock releases the lock.
	Unlock() error

	// Locked reports whether this Locker currently holds the lock.
	Locked() bool

	// Path returns the lock file path.
	Path() string
}
