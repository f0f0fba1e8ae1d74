package updater_test

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/api"
	"github.com/NethermindEth/geoipupdate/internal/data"
	"github.com/NethermindEth/geoipupdate/pkg/updater"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testAccountID  = 123
	testLicenseKey = "secret"
)

var lastModified = time.Date(2023, 4, 10, 12, 47, 31, 0, time.UTC)

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := io.WriteString(gw, s)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// updateServer serves each edition in editions as "<edition>.mmdb", answering
// 304 when the client already has the current content.
type updateServer struct {
	*httptest.Server
	editions  map[string]string
	downloads atomic.Int32
	// update replaces the default handler of authorized update requests.
	update http.HandlerFunc
}

func newUpdateServer(t *testing.T, editions map[string]string) *updateServer {
	t.Helper()
	s := &updateServer{editions: editions}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/app/update_getfilename":
			id := r.URL.Query().Get("product_id")
			if _, ok := s.editions[id]; !ok {
				http.Error(w, "unknown product", http.StatusNotFound)
				return
			}
			_, _ = io.WriteString(w, id+".mmdb")
		case strings.HasPrefix(r.URL.Path, "/geoip/databases/"):
			s.downloads.Add(1)
			user, pass, ok := r.BasicAuth()
			if !ok || user != "123" || pass != testLicenseKey {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if s.update != nil {
				s.update(w, r)
				return
			}
			id := strings.Split(r.URL.Path, "/")[3]
			content := s.editions[id]
			sum := md5Hex(content)
			if r.URL.Query().Get("db_md5") == sum {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("X-Database-MD5", sum)
			w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
			_, _ = w.Write(gzipBytes(t, content))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newClient(t *testing.T, url, licenseKey string) *api.Client {
	t.Helper()
	client, err := api.NewClient(api.Options{
		BaseURL:    url,
		AccountID:  testAccountID,
		LicenseKey: licenseKey,
		UserAgent:  "geoipupdate/test",
	})
	require.NoError(t, err)
	return client
}

func newDatabaseDir(t *testing.T, dir string) (afero.Fs, *data.DatabaseDir) {
	t.Helper()
	fs := afero.NewOsFs()
	dbDir, err := data.NewDatabaseDir(fs, dir)
	require.NoError(t, err)
	return fs, dbDir
}

func newFetcher(t *testing.T, s *updateServer, dir string, mirror updater.Mirror) *updater.EditionFetcher {
	t.Helper()
	fs, dbDir := newDatabaseDir(t, dir)
	return updater.NewEditionFetcher(fs, dbDir, newClient(t, s.URL, testLicenseKey), true, mirror)
}
