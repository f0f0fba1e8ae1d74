package updater_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/NethermindEth/geoipupdate/pkg/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	checkedAt := time.Date(2023, 4, 11, 8, 0, 0, 0, time.UTC)
	results := []updater.Result{
		{
			EditionID:  "GeoIP2-City",
			OldHash:    "00000000000000000000000000000000",
			NewHash:    "cfa36ddc8279b5483a5aa25e9a6151f4",
			ModifiedAt: lastModified,
			CheckedAt:  checkedAt,
			Outcome:    updater.Updated,
		},
		{
			EditionID: "GeoIP2-ISP",
			OldHash:   "cfa36ddc8279b5483a5aa25e9a6151f4",
			NewHash:   "cfa36ddc8279b5483a5aa25e9a6151f4",
			CheckedAt: checkedAt,
			Outcome:   updater.NoUpdate,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, updater.WriteOutput(&buf, results))
	assert.Equal(t, `[{"edition_id":"GeoIP2-City","old_hash":"00000000000000000000000000000000","new_hash":"cfa36ddc8279b5483a5aa25e9a6151f4","modified_at":1681130851,"checked_at":1681200000},{"edition_id":"GeoIP2-ISP","old_hash":"cfa36ddc8279b5483a5aa25e9a6151f4","new_hash":"cfa36ddc8279b5483a5aa25e9a6151f4","modified_at":0,"checked_at":1681200000}]`+"\n", buf.String())
}

func TestWriteOutput_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, updater.WriteOutput(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestPartialFailureError(t *testing.T) {
	err := &updater.PartialFailureError{Failures: map[string]error{
		"GeoIP2-ISP":  updater.ErrInvalidArchive,
		"GeoIP2-City": updater.ErrSkippedAfterAuthFailure,
	}}
	assert.Equal(t, []string{"GeoIP2-City", "GeoIP2-ISP"}, err.Editions())
	assert.Equal(t, "2 edition(s) failed: GeoIP2-City: skipped after the server rejected the credentials; GeoIP2-ISP: downloaded file is not a gzip archive", err.Error())
	assert.ErrorIs(t, err, updater.ErrInvalidArchive)
	assert.Equal(t, "updated", updater.Updated.String())
	assert.Equal(t, "no_update", updater.NoUpdate.String())
}
