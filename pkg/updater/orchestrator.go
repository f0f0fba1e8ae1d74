package updater

import (
	"context"
	"errors"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/api"
	"github.com/NethermindEth/geoipupdate/internal/data"
	"github.com/NethermindEth/geoipupdate/internal/locker"
	"github.com/NethermindEth/geoipupdate/internal/metrics"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Orchestrator runs the fetcher over every configured edition while holding
// the run lock.
type Orchestrator struct {
	fs       afero.Fs
	dbDir    *data.DatabaseDir
	lock     locker.Locker
	fetcher  Fetcher
	editions []string
	metrics  *metrics.Recorder
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator. recorder may be nil.
func NewOrchestrator(
	fs afero.Fs,
	dbDir *data.DatabaseDir,
	lock locker.Locker,
	fetcher Fetcher,
	editions []string,
	recorder *metrics.Recorder,
) *Orchestrator {
	return &Orchestrator{
		fs:       fs,
		dbDir:    dbDir,
		lock:     lock,
		fetcher:  fetcher,
		editions: editions,
		metrics:  recorder,
		now:      time.Now,
	}
}

// Run checks the database directory exists, takes the run lock, checks the
// directory is writable and fetches every edition in order. A failed edition does not stop the others, except that
// once the server rejects the credentials the remaining editions are skipped
// with ErrSkippedAfterAuthFailure. The returned results cover the editions
// that succeeded; the error is a *PartialFailureError when any edition
// failed.
//
// The lock is kept after Run returns and is released when the process
// exits. Calling Run again on the same Orchestrator reuses it.
func (o *Orchestrator) Run(ctx context.Context) ([]Result, error) {
	if err := o.dbDir.Check(); err != nil {
		return nil, err
	}
	if err := locker.Acquire(o.fs, o.lock); err != nil {
		return nil, err
	}
	if err := o.dbDir.CheckWritable(); err != nil {
		return nil, err
	}

	runLogger := log.WithField("run", uuid.New().String())
	runLogger.Debugf("Acquired lock %s", o.lock.Path())

	start := o.now()
	results := make([]Result, 0, len(o.editions))
	failures := make(map[string]error)
	authFailed := false
	for _, id := range o.editions {
		logger := runLogger.WithField("edition", id)
		if authFailed {
			failures[id] = ErrSkippedAfterAuthFailure
			o.metrics.ObserveEdition(id, metrics.ResultFailed, 0, time.Time{})
			logger.Warn("Skipping edition after invalid credentials")
			continue
		}
		if err := ctx.Err(); err != nil {
			failures[id] = err
			o.metrics.ObserveEdition(id, metrics.ResultFailed, 0, time.Time{})
			continue
		}

		editionStart := o.now()
		res, err := o.fetcher.Fetch(ctx, id)
		elapsed := o.now().Sub(editionStart)
		if err != nil {
			logger.WithError(err).Error("Failed updating edition")
			failures[id] = err
			o.metrics.ObserveEdition(id, metrics.ResultFailed, elapsed, time.Time{})
			if errors.Is(err, api.ErrInvalidCredentials) {
				authFailed = true
			}
			continue
		}

		res.CheckedAt = o.now()
		results = append(results, *res)
		if res.Outcome == Updated {
			o.metrics.ObserveEdition(id, metrics.ResultUpdated, elapsed, res.ModifiedAt)
		} else {
			o.metrics.ObserveEdition(id, metrics.ResultNoUpdate, elapsed, time.Time{})
			logger.Info("Database is up to date")
		}
	}

	finished := o.now()
	o.metrics.ObserveRun(finished, finished.Sub(start), len(failures))

	if len(failures) > 0 {
		return results, &PartialFailureError{Failures: failures}
	}
	return results, nil
}
