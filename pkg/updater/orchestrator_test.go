package updater_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/NethermindEth/geoipupdate/internal/api"
	"github.com/NethermindEth/geoipupdate/internal/data"
	"github.com/NethermindEth/geoipupdate/internal/integrity"
	"github.com/NethermindEth/geoipupdate/internal/locker"
	"github.com/NethermindEth/geoipupdate/internal/metrics"
	"github.com/NethermindEth/geoipupdate/pkg/updater"
	"github.com/NethermindEth/geoipupdate/pkg/updater/mocks"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noUpdate(id string) *updater.Result {
	return &updater.Result{EditionID: id, OldHash: integrity.ZeroMD5, NewHash: integrity.ZeroMD5, Outcome: updater.NoUpdate}
}

func TestOrchestrator_Run(t *testing.T) {
	editions := []string{"GeoIP2-City", "GeoIP2-Country", "GeoIP2-ISP"}

	type testCase struct {
		name         string
		mocker       func(t *testing.T, f *mocks.MockFetcher)
		wantResults  []string
		wantFailures map[string]error
	}
	ts := []testCase{
		{
			name: "all editions succeed in order",
			mocker: func(t *testing.T, f *mocks.MockFetcher) {
				gomock.InOrder(
					f.EXPECT().Fetch(gomock.Any(), "GeoIP2-City").Return(noUpdate("GeoIP2-City"), nil),
					f.EXPECT().Fetch(gomock.Any(), "GeoIP2-Country").Return(&updater.Result{EditionID: "GeoIP2-Country", Outcome: updater.Updated}, nil),
					f.EXPECT().Fetch(gomock.Any(), "GeoIP2-ISP").Return(noUpdate("GeoIP2-ISP"), nil),
				)
			},
			wantResults: editions,
		},
		func() testCase {
			notFound := fmt.Errorf("%w: GeoIP2-Country", api.ErrEditionNotFound)
			return testCase{
				name: "one failure does not stop the others",
				mocker: func(t *testing.T, f *mocks.MockFetcher) {
					gomock.InOrder(
						f.EXPECT().Fetch(gomock.Any(), "GeoIP2-City").Return(noUpdate("GeoIP2-City"), nil),
						f.EXPECT().Fetch(gomock.Any(), "GeoIP2-Country").Return(nil, notFound),
						f.EXPECT().Fetch(gomock.Any(), "GeoIP2-ISP").Return(noUpdate("GeoIP2-ISP"), nil),
					)
				},
				wantResults:  []string{"GeoIP2-City", "GeoIP2-ISP"},
				wantFailures: map[string]error{"GeoIP2-Country": api.ErrEditionNotFound},
			}
		}(),
		{
			name: "invalid credentials skip the remaining editions",
			mocker: func(t *testing.T, f *mocks.MockFetcher) {
				gomock.InOrder(
					f.EXPECT().Fetch(gomock.Any(), "GeoIP2-City").Return(noUpdate("GeoIP2-City"), nil),
					f.EXPECT().Fetch(gomock.Any(), "GeoIP2-Country").Return(nil, api.ErrInvalidCredentials),
				)
			},
			wantResults: []string{"GeoIP2-City"},
			wantFailures: map[string]error{
				"GeoIP2-Country": api.ErrInvalidCredentials,
				"GeoIP2-ISP":     updater.ErrSkippedAfterAuthFailure,
			},
		},
	}
	for _, tc := range ts {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetcher := mocks.NewMockFetcher(ctrl)
			tc.mocker(t, fetcher)

			fs, dbDir := newDatabaseDir(t, t.TempDir())
			recorder := metrics.NewRecorder()
			o := updater.NewOrchestrator(fs, dbDir, locker.NewFLock().New(dbDir.DefaultLockPath()), fetcher, editions, recorder)

			results, err := o.Run(context.Background())

			got := make([]string, 0, len(results))
			for _, r := range results {
				got = append(got, r.EditionID)
				assert.False(t, r.CheckedAt.IsZero())
			}
			assert.Equal(t, tc.wantResults, got)

			if tc.wantFailures == nil {
				require.NoError(t, err)
				return
			}
			var partial *updater.PartialFailureError
			require.ErrorAs(t, err, &partial)
			require.Len(t, partial.Failures, len(tc.wantFailures))
			for id, want := range tc.wantFailures {
				assert.ErrorIs(t, partial.Failures[id], want)
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestOrchestrator_LockHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	fs, dbDir := newDatabaseDir(t, t.TempDir())
	other := locker.NewFLock().New(dbDir.DefaultLockPath())
	require.NoError(t, locker.Acquire(fs, other))
	t.Cleanup(func() { _ = other.Unlock() })

	o := updater.NewOrchestrator(fs, dbDir, locker.NewFLock().New(dbDir.DefaultLockPath()), fetcher, []string{"GeoIP2-City"}, nil)
	_, err := o.Run(context.Background())
	assert.ErrorIs(t, err, locker.ErrLockHeld)
}

type createRecordingFs struct {
	afero.Fs
	created []string
}

func (c *createRecordingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		c.created = append(c.created, name)
	}
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *createRecordingFs) Create(name string) (afero.File, error) {
	c.created = append(c.created, name)
	return c.Fs.Create(name)
}

func TestOrchestrator_LockHeldWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	dir := t.TempDir()
	fs := &createRecordingFs{Fs: afero.NewOsFs()}
	dbDir, err := data.NewDatabaseDir(fs, dir)
	require.NoError(t, err)
	other := locker.NewFLock().New(dbDir.DefaultLockPath())
	require.NoError(t, locker.Acquire(fs, other))
	t.Cleanup(func() { _ = other.Unlock() })

	o := updater.NewOrchestrator(fs, dbDir, locker.NewFLock().New(dbDir.DefaultLockPath()), fetcher, []string{"GeoIP2-City"}, nil)
	_, err = o.Run(context.Background())
	require.ErrorIs(t, err, locker.ErrLockHeld)

	assert.Empty(t, fs.created)
	assert.Equal(t, []string{".geoipupdate.lock"}, dirEntries(t, dir))
}

func TestOrchestrator_ReadOnlyDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	dbDir, err := data.NewDatabaseDir(afero.NewReadOnlyFs(afero.NewOsFs()), t.TempDir())
	require.NoError(t, err)

	o := updater.NewOrchestrator(afero.NewOsFs(), dbDir, locker.NewFLock().New(filepath.Join(t.TempDir(), "lock")), fetcher, []string{"GeoIP2-City"}, nil)
	_, err = o.Run(context.Background())
	assert.ErrorIs(t, err, data.ErrDirectoryNotWritable)
}

func TestOrchestrator_DirectoryChecks(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	ts := []struct {
		name    string
		dir     string
		wantErr error
	}{
		{name: "missing", dir: filepath.Join(root, "missing"), wantErr: data.ErrDirectoryNotFound},
		{name: "not a directory", dir: file, wantErr: data.ErrNotADirectory},
	}
	for _, tc := range ts {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetcher := mocks.NewMockFetcher(ctrl)
			fs, dbDir := newDatabaseDir(t, tc.dir)

			o := updater.NewOrchestrator(fs, dbDir, locker.NewFLock().New(filepath.Join(root, "lock")), fetcher, []string{"GeoIP2-City"}, nil)
			_, err := o.Run(context.Background())
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestOrchestrator_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fs, dbDir := newDatabaseDir(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := updater.NewOrchestrator(fs, dbDir, locker.NewFLock().New(dbDir.DefaultLockPath()), fetcher, []string{"GeoIP2-City"}, nil)
	_, err := o.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	editions := map[string]string{
		"GeoIP2-City":    "city database",
		"GeoIP2-Country": "country database",
	}
	s := newUpdateServer(t, editions)
	dir := t.TempDir()
	fs, dbDir := newDatabaseDir(t, dir)
	recorder := metrics.NewRecorder()
	fetcher := updater.NewEditionFetcher(fs, dbDir, newClient(t, s.URL, testLicenseKey), false, nil)
	o := updater.NewOrchestrator(fs, dbDir, locker.NewFLock().New(dbDir.DefaultLockPath()), fetcher, []string{"GeoIP2-City", "GeoIP2-Country"}, recorder)

	results, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, updater.Updated, r.Outcome)
		assert.Equal(t, md5Hex(editions[r.EditionID]), r.NewHash)
	}

	// A second run against an unchanged server installs nothing.
	results, err = o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, updater.NoUpdate, r.Outcome)
		assert.Equal(t, r.OldHash, r.NewHash)
	}
	assert.Equal(t, []string{".geoipupdate.lock", "GeoIP2-City.mmdb", "GeoIP2-Country.mmdb"}, dirEntries(t, dir))
	checks, err := testutil.GatherAndCount(recorder.Registry(), "geoipupdate_edition_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 4, checks)
}
