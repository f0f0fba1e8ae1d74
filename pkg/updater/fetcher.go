package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NethermindEth/geoipupdate/internal/api"
	"github.com/NethermindEth/geoipupdate/internal/data"
	"github.com/NethermindEth/geoipupdate/internal/integrity"
	"github.com/NethermindEth/geoipupdate/internal/utils"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Checks that EditionFetcher implements Fetcher.
var _ = Fetcher(&EditionFetcher{})

// EditionFetcher downloads, verifies and installs editions into a database
// directory.
type EditionFetcher struct {
	fs                afero.Fs
	dbDir             *data.DatabaseDir
	client            UpdateClient
	preserveFileTimes bool
	mirror            Mirror
}

// NewEditionFetcher creates an EditionFetcher. mirror may be nil.
func NewEditionFetcher(
	fs afero.Fs,
	dbDir *data.DatabaseDir,
	client UpdateClient,
	preserveFileTimes bool,
	mirror Mirror,
) *EditionFetcher {
	return &EditionFetcher{
		fs:                fs,
		dbDir:             dbDir,
		client:            client,
		preserveFileTimes: preserveFileTimes,
		mirror:            mirror,
	}
}

// Fetch resolves the edition file name, hashes the local copy and asks the
// server for anything newer. A new copy goes through <file>.gz and
// <file>.test before it replaces <file>. Both temporary files are removed
// on every outcome except a hash mismatch, which keeps <file>.test.
func (f *EditionFetcher) Fetch(ctx context.Context, editionID string) (*Result, error) {
	logger := log.WithField("edition", editionID)

	filename, err := f.client.GetFilename(ctx, editionID)
	if err != nil {
		return nil, err
	}
	finalPath, err := f.dbDir.DatabasePath(filename)
	if err != nil {
		return nil, err
	}
	logger = logger.WithField("file", finalPath)

	oldHash, err := integrity.HashFile(f.fs, finalPath)
	if err != nil {
		return nil, err
	}
	if integrity.IsZero(oldHash) {
		logger.Debug("No local copy, requesting a full download")
	} else {
		logger.Debugf("Calculated MD5 sum for %s: %s", finalPath, oldHash)
	}

	result := &Result{
		EditionID: editionID,
		Filename:  filename,
		OldHash:   oldHash,
		NewHash:   oldHash,
		Outcome:   NoUpdate,
	}

	update, err := f.client.Download(ctx, editionID, oldHash)
	if err != nil {
		return nil, err
	}
	if update.NotModified {
		logger.Debug("No new updates available")
		return result, nil
	}
	if strings.EqualFold(update.ExpectedHash, oldHash) {
		update.Body.Close()
		logger.Debug("Server copy matches the installed one")
		return result, nil
	}

	if err := f.install(finalPath, update); err != nil {
		return nil, err
	}
	result.NewHash = strings.ToLower(update.ExpectedHash)
	result.ModifiedAt = update.ModifiedAt
	result.Outcome = Updated
	logger.WithField("md5", result.NewHash).Info("Database updated")

	if f.mirror != nil {
		if err := f.mirror.Upload(ctx, finalPath, result.NewHash, result.ModifiedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMirroring, err)
		}
	}
	return result, nil
}

// install writes the download to <file>.gz, decompresses it into
// <file>.test and moves that into place once its hash checks out.
func (f *EditionFetcher) install(finalPath string, update *api.Update) (err error) {
	gzPath := data.CompressedPath(finalPath)
	testPath := data.TestPath(finalPath)
	defer func() {
		if err == nil {
			return
		}
		leftovers := []string{gzPath, testPath}
		var mismatch *data.HashMismatchError
		if errors.As(err, &mismatch) {
			leftovers = leftovers[:1]
		}
		if rerr := utils.RemoveIfExists(f.fs, leftovers...); rerr != nil {
			log.WithError(rerr).Warn("Failed removing temporary files")
		}
	}()

	if err := f.writeDownload(update.Body, gzPath); err != nil {
		return err
	}
	if !integrity.LooksLikeGzip(f.fs, gzPath) {
		return fmt.Errorf("%w: %s", ErrInvalidArchive, gzPath)
	}
	if err := utils.GunzipFile(f.fs, gzPath, testPath); err != nil {
		return err
	}
	return f.dbDir.Install(data.InstallRequest{
		TempPath:         testPath,
		ExpectedHash:     update.ExpectedHash,
		FinalPath:        finalPath,
		PreserveFileTime: f.preserveFileTimes,
		ModifiedAt:       update.ModifiedAt,
		SourcePath:       gzPath,
	})
}

// writeDownload streams body into path and closes body.
func (f *EditionFetcher) writeDownload(body io.ReadCloser, path string) error {
	defer body.Close()

	out, err := f.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &utils.IOError{Op: "create", Path: path, Err: err}
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		return fmt.Errorf("writing download to %s: %w", path, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return &utils.IOError{Op: "sync", Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &utils.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
