package data

import (
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/integrity"
	"github.com/NethermindEth/geoipupdate/internal/utils"
	log "github.com/sirupsen/logrus"
)

// InstallRequest describes a decompressed database waiting to replace the
// live copy.
type InstallRequest struct {
	// TempPath is the decompressed, unverified file.
	TempPath string
	// ExpectedHash is the MD5 the server announced for the decompressed file.
	ExpectedHash string
	// FinalPath is the live database path.
	FinalPath string
	// PreserveFileTime sets the installed file times to ModifiedAt.
	PreserveFileTime bool
	// ModifiedAt is the server side modification time. Ignored when zero.
	ModifiedAt time.Time
	// SourcePath is the compressed download, removed once the install is
	// durable.
	SourcePath string
}

// Install verifies req.TempPath against req.ExpectedHash and renames it onto
// req.FinalPath, then syncs the directory. The live file is only ever
// replaced by the rename, so readers see the old or the new database and
// never a partial one. A hash mismatch leaves TempPath in place.
func (d *DatabaseDir) Install(req InstallRequest) error {
	actual, err := integrity.HashFile(d.fs, req.TempPath)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actual, req.ExpectedHash) {
		return &HashMismatchError{Path: req.TempPath, Expected: req.ExpectedHash, Actual: actual}
	}

	log.Debugf("Renaming %s to %s", req.TempPath, req.FinalPath)
	if err := d.fs.Rename(req.TempPath, req.FinalPath); err != nil {
		return fmt.Errorf("%w: %s", ErrRenamingDatabase, err)
	}

	if req.PreserveFileTime && !req.ModifiedAt.IsZero() {
		if err := d.fs.Chtimes(req.FinalPath, req.ModifiedAt, req.ModifiedAt); err != nil {
			return fmt.Errorf("%w: %s: %s", ErrSettingTimes, req.FinalPath, err)
		}
	}

	// The new database is already live at this point. Some file systems,
	// and directory handles on Windows, do not support sync.
	if err := utils.SyncDir(d.fs, d.path); err != nil {
		log.Warnf("Ignoring error syncing directory %s: %v", d.path, err)
	}

	if err := utils.RemoveIfExists(d.fs, req.SourcePath); err != nil {
		return fmt.Errorf("removing %s: %w", req.SourcePath, err)
	}
	return nil
}
