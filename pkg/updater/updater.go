// Package updater keeps the configured editions in the database directory in
// sync with the update server.
package updater

import (
	"context"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/api"
)

// Fetcher brings a single edition up to date.
type Fetcher interface {
	// Fetch checks editionID against the server and installs a newer copy
	// when there is one.
	Fetch(ctx context.Context, editionID string) (*Result, error)
}

// UpdateClient is the part of the update server API used by EditionFetcher.
type UpdateClient interface {
	GetFilename(ctx context.Context, editionID string) (string, error)
	Download(ctx context.Context, editionID, localHash string) (*api.Update, error)
}

// Mirror receives a copy of every database installed by EditionFetcher.
type Mirror interface {
	Upload(ctx context.Context, databasePath, hash string, modifiedAt time.Time) error
}
