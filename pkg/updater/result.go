package updater

import "time"

// Outcome is how a successful edition check ended.
type Outcome int

const (
	// NoUpdate means the installed copy was already current.
	NoUpdate Outcome = iota
	// Updated means a new copy was installed.
	Updated
)

func (o Outcome) String() string {
	switch o {
	case NoUpdate:
		return "no_update"
	case Updated:
		return "updated"
	}
	return "unknown"
}

// Result describes a successful edition check.
type Result struct {
	EditionID string
	Filename  string
	// OldHash is the MD5 of the copy on disk before the check, ZeroMD5 when
	// there was none.
	OldHash string
	// NewHash equals OldHash unless Outcome is Updated.
	NewHash string
	// ModifiedAt is the server modification time of an installed update.
	ModifiedAt time.Time
	CheckedAt  time.Time
	Outcome    Outcome
}
