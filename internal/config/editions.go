package config

import (
	"strings"

	"github.com/thoas/go-funk"
)

// Editions is an ordered list of edition IDs without duplicates.
type Editions []string

// NewEditions builds Editions from ids, dropping repeated IDs while keeping
// the first occurrence in place.
func NewEditions(ids ...string) Editions {
	e := make(Editions, 0, len(ids))
	for _, id := range ids {
		e.Insert(id)
	}
	return e
}

// Insert appends id unless it is already present. It reports whether id was
// added.
func (e *Editions) Insert(id string) bool {
	if id == "" || funk.ContainsString(*e, id) {
		return false
	}
	*e = append(*e, id)
	return true
}

func (e Editions) String() string {
	return strings.Join(e, " ")
}
