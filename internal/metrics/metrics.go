// Package metrics records the outcome of update runs as Prometheus metrics.
// The metrics can be written to a file for the node exporter textfile
// collector, since the updater is a short lived job and is never scraped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geoipupdate"

const (
	ResultUpdated  = "updated"
	ResultNoUpdate = "no_update"
	ResultFailed   = "failed"
)

// Recorder collects the metrics of a single run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	editionChecks   *prometheus.CounterVec
	editionDuration *prometheus.HistogramVec
	editionUpdated  *prometheus.GaugeVec
	lastRun         prometheus.Gauge
	lastRunSuccess  prometheus.Gauge
	runDuration     prometheus.Gauge
	editionsFailed  prometheus.Gauge
}

// NewRecorder creates a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		editionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edition_checks_total",
			Help:      "Edition update checks by result.",
		}, []string{"edition", "result"}),
		editionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "edition_check_duration_seconds",
			Help:      "Time spent checking and installing an edition.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"edition"}),
		editionUpdated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "edition_last_update_timestamp_seconds",
			Help:      "Server modification time of the last installed edition.",
		}, []string{"edition"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Time the last run finished.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when every edition of the last run is up to date.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		editionsFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_editions_failed",
			Help:      "Number of editions that failed in the last run.",
		}),
	}
	r.registry.MustRegister(
		r.editionChecks,
		r.editionDuration,
		r.editionUpdated,
		r.lastRun,
		r.lastRunSuccess,
		r.runDuration,
		r.editionsFailed,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveEdition records one edition check. modifiedAt is only used for
// ResultUpdated and ignored when zero.
func (r *Recorder) ObserveEdition(edition, result string, d time.Duration, modifiedAt time.Time) {
	if r == nil {
		return
	}
	r.editionChecks.WithLabelValues(edition, result).Inc()
	r.editionDuration.WithLabelValues(edition).Observe(d.Seconds())
	if result == ResultUpdated && !modifiedAt.IsZero() {
		r.editionUpdated.WithLabelValues(edition).Set(float64(modifiedAt.Unix()))
	}
}

// ObserveRun records the end of a run.
func (r *Recorder) ObserveRun(finished time.Time, d time.Duration, failed int) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(finished.Unix()))
	r.runDuration.Set(d.Seconds())
	r.editionsFailed.Set(float64(failed))
	if failed == 0 {
		r.lastRunSuccess.Set(1)
	} else {
		r.lastRunSuccess.Set(0)
	}
}

// WriteTextfile writes the metrics to path in the text exposition format. The
// file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
