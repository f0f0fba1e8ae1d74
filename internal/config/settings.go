// Package config loads the updater settings from a GeoIP.conf or YAML file,
// the environment and command line overrides.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/data"
	"github.com/spf13/afero"
)

// DefaultHost is the update server used when none is configured.
const DefaultHost = "updates.maxmind.com"

// Settings holds everything a run needs.
type Settings struct {
	AccountID  int
	LicenseKey string
	// Host is the update server, with or without scheme.
	Host       string
	EditionIDs Editions
	// DatabaseDirectory is where databases are installed.
	DatabaseDirectory string
	// LockFile defaults to <DatabaseDirectory>/.geoipupdate.lock.
	LockFile          string
	PreserveFileTimes bool
	Proxy             *url.URL
	// RetryFor bounds retries of failed requests. Zero disables them.
	RetryFor time.Duration
	// HTTPTimeout bounds each request. Zero means no timeout.
	HTTPTimeout time.Duration
	S3          S3Settings

	Verbose bool
	// Output prints a JSON summary of the run on stdout.
	Output bool
	// MetricsFile, when set, receives the run metrics in the Prometheus text
	// format.
	MetricsFile string

	proxyURL      string
	proxyUserInfo string
}

// S3Settings configures the optional mirror of installed databases to an S3
// bucket. The mirror is disabled while Bucket is empty.
type S3Settings struct {
	Bucket                      string
	Prefix                      string
	Region                      string
	Endpoint                    string
	AccessKeyID                 string
	SecretAccessKey             string
	DisableServerSideEncryption bool
}

// Enabled reports whether a bucket is configured.
func (s S3Settings) Enabled() bool {
	return s.Bucket != ""
}

// URL returns the base URL of the update server.
func (s *Settings) URL() string {
	host := strings.TrimRight(s.Host, "/")
	if schemeRE.MatchString(host) {
		return host
	}
	return "https://" + host
}

// Option overrides a setting after the config file is read.
type Option func(*Settings) error

// WithDatabaseDirectory overrides the DatabaseDirectory directive. An empty
// dir keeps the configured one.
func WithDatabaseDirectory(dir string) Option {
	return func(s *Settings) error {
		if dir != "" {
			s.DatabaseDirectory = filepath.Clean(dir)
		}
		return nil
	}
}

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(s *Settings) error {
		s.Verbose = v
		return nil
	}
}

// WithOutput enables the JSON run summary.
func WithOutput(v bool) Option {
	return func(s *Settings) error {
		s.Output = v
		return nil
	}
}

// WithMetricsFile sets the Prometheus textfile path.
func WithMetricsFile(path string) Option {
	return func(s *Settings) error {
		if path != "" {
			s.MetricsFile = filepath.Clean(path)
		}
		return nil
	}
}

// Load reads the config file at path and applies opts in order. Files ending
// in .yml or .yaml are read as YAML, anything else as GeoIP.conf directives.
func Load(fs afero.Fs, path string, opts ...Option) (*Settings, error) {
	s := &Settings{
		Host:              DefaultHost,
		DatabaseDirectory: filepath.Clean(DefaultDatabaseDirectory),
	}

	content, err := afero.ReadFile(fs, filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadingConfig, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = parseYAML(s, content)
	default:
		err = parseDirectives(s, content)
	}
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.Proxy, err = parseProxy(s.proxyURL, s.proxyUserInfo)
	if err != nil {
		return nil, err
	}
	if s.LockFile == "" {
		s.LockFile = filepath.Join(s.DatabaseDirectory, data.LockFileName)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	s.proxyURL = ""
	s.proxyUserInfo = ""
	return s, nil
}

// Validate checks the settings required to contact the update server.
func (s *Settings) Validate() error {
	if (s.AccountID == 0 || s.AccountID == 999999) && s.LicenseKey == "000000000000" {
		return ErrLegacyCredentials
	}
	if len(s.EditionIDs) == 0 {
		return ErrMissingEditions
	}
	if s.AccountID == 0 {
		return ErrMissingAccountID
	}
	if s.LicenseKey == "" {
		return ErrMissingLicenseKey
	}
	return nil
}
