package updater

import (
	"encoding/json"
	"io"
	"time"
)

type outputEntry struct {
	EditionID  string `json:"edition_id"`
	OldHash    string `json:"old_hash"`
	NewHash    string `json:"new_hash"`
	ModifiedAt int64  `json:"modified_at"`
	CheckedAt  int64  `json:"checked_at"`
}

// WriteOutput writes results to w as a JSON array. Times are Unix seconds;
// modified_at is 0 when the server did not report one.
func WriteOutput(w io.Writer, results []Result) error {
	entries := make([]outputEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, outputEntry{
			EditionID:  r.EditionID,
			OldHash:    r.OldHash,
			NewHash:    r.NewHash,
			ModifiedAt: unixSeconds(r.ModifiedAt),
			CheckedAt:  unixSeconds(r.CheckedAt),
		})
	}
	return json.NewEncoder(w).Encode(entries)
}

func unixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
