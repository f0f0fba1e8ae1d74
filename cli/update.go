package cli

import (
	"context"
	"io"

	"github.com/NethermindEth/geoipupdate/internal/api"
	"github.com/NethermindEth/geoipupdate/internal/config"
	"github.com/NethermindEth/geoipupdate/internal/data"
	"github.com/NethermindEth/geoipupdate/internal/locker"
	"github.com/NethermindEth/geoipupdate/internal/metrics"
	"github.com/NethermindEth/geoipupdate/internal/mirror"
	"github.com/NethermindEth/geoipupdate/pkg/updater"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// runUpdate wires the update pipeline from settings and runs it once. The
// metrics file and the JSON summary are written even when some editions
// failed.
func runUpdate(ctx context.Context, out io.Writer, fs afero.Fs, l locker.Locker, s *config.Settings, version string) error {
	dbDir, err := data.NewDatabaseDir(fs, s.DatabaseDirectory)
	if err != nil {
		return err
	}

	client, err := api.NewClient(api.Options{
		BaseURL:    s.URL(),
		AccountID:  s.AccountID,
		LicenseKey: s.LicenseKey,
		Proxy:      s.Proxy,
		Timeout:    s.HTTPTimeout,
		RetryFor:   s.RetryFor,
		UserAgent:  api.DefaultUserAgent + "/" + version,
	})
	if err != nil {
		return err
	}

	var dbMirror updater.Mirror
	if s.S3.Enabled() {
		m, err := mirror.NewS3Mirror(ctx, fs, s.S3)
		if err != nil {
			return err
		}
		dbMirror = m
	}

	var recorder *metrics.Recorder
	if s.MetricsFile != "" {
		recorder = metrics.NewRecorder()
	}

	fetcher := updater.NewEditionFetcher(fs, dbDir, client, s.PreserveFileTimes, dbMirror)
	orchestrator := updater.NewOrchestrator(fs, dbDir, l.New(s.LockFile), fetcher, s.EditionIDs, recorder)

	log.Debugf("Updating %s in %s", s.EditionIDs, dbDir.Path())
	results, runErr := orchestrator.Run(ctx)

	if recorder != nil {
		if err := recorder.WriteTextfile(s.MetricsFile); err != nil {
			log.WithError(err).Warnf("Failed writing metrics to %s", s.MetricsFile)
		}
	}
	if s.Output {
		if err := updater.WriteOutput(out, results); err != nil {
			return err
		}
	}
	return runErr
}
