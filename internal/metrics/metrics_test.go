package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveEdition(t *testing.T) {
	r := NewRecorder()
	modifiedAt := time.Date(2023, 4, 10, 12, 47, 31, 0, time.UTC)

	r.ObserveEdition("GeoIP2-City", ResultUpdated, time.Second, modifiedAt)
	r.ObserveEdition("GeoIP2-City", ResultNoUpdate, time.Second, time.Time{})
	r.ObserveEdition("GeoIP2-ISP", ResultFailed, time.Second, time.Time{})
	r.ObserveEdition("GeoIP2-ISP", ResultFailed, time.Second, time.Time{})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.editionChecks.WithLabelValues("GeoIP2-City", ResultUpdated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.editionChecks.WithLabelValues("GeoIP2-City", ResultNoUpdate)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.editionChecks.WithLabelValues("GeoIP2-ISP", ResultFailed)))
	assert.Equal(t, float64(modifiedAt.Unix()), testutil.ToFloat64(r.editionUpdated.WithLabelValues("GeoIP2-City")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.editionUpdated))
}

func TestRecorder_ObserveRun(t *testing.T) {
	ts := []struct {
		name        string
		failed      int
		wantSuccess float64
	}{
		{name: "success", failed: 0, wantSuccess: 1},
		{name: "failure", failed: 2, wantSuccess: 0},
	}
	for _, tc := range ts {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRecorder()
			finished := time.Unix(1700000000, 0)
			r.ObserveRun(finished, 3*time.Second, tc.failed)

			assert.Equal(t, tc.wantSuccess, testutil.ToFloat64(r.lastRunSuccess))
			assert.Equal(t, float64(tc.failed), testutil.ToFloat64(r.editionsFailed))
			assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastRun))
			assert.Equal(t, 3.0, testutil.ToFloat64(r.runDuration))
		})
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveEdition("GeoIP2-City", ResultNoUpdate, time.Second, time.Time{})
	r.ObserveRun(time.Now(), time.Second, 0)

	path := filepath.Join(t.TempDir(), "geoipupdate.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, `geoipupdate_edition_checks_total{edition="GeoIP2-City",result="no_update"} 1`))
	assert.True(t, strings.Contains(content, "geoipupdate_last_run_success 1"))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveEdition("GeoIP2-City", ResultUpdated, time.Second, time.Now())
		r.ObserveRun(time.Now(), time.Second, 1)
	})
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
	assert.Nil(t, r.Registry())
}
