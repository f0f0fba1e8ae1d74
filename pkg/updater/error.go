package updater

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

var (
	ErrInvalidArchive          = errors.New("downloaded file is not a gzip archive")
	ErrSkippedAfterAuthFailure = errors.New("skipped after the server rejected the credentials")
	ErrMirroring               = errors.New("failed mirroring database")
)

// PartialFailureError is returned by Orchestrator.Run when at least one
// edition failed. Failures maps each failed edition to its error.
type PartialFailureError struct {
	Failures map[string]error
}

// Editions returns the failed editions in lexical order.
func (e *PartialFailureError) Editions() []string {
	editions := maps.Keys(e.Failures)
	sort.Strings(editions)
	return editions
}

func (e *PartialFailureError) Error() string {
	editions := e.Editions()
	msgs := make([]string, 0, len(editions))
	for _, id := range editions {
		msgs = append(msgs, fmt.Sprintf("%s: %s", id, e.Failures[id]))
	}
	return fmt.Sprintf("%d edition(s) failed: %s", len(editions), strings.Join(msgs, "; "))
}

func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, id := range e.Editions() {
		errs = append(errs, e.Failures[id])
	}
	return errs
}
