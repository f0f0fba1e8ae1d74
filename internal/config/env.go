package config

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	EnvAccountID  = "GEOIPUPDATE_ACCOUNT_ID"
	EnvLicenseKey = "GEOIPUPDATE_LICENSE_KEY"
	EnvEditionIDs = "GEOIPUPDATE_EDITION_IDS"
	EnvHost       = "GEOIPUPDATE_HOST"
	// EnvConfigFile names the config file when the flag is not given.
	EnvConfigFile = "GEOIPUPDATE_CONF_FILE"
)

// WithEnvironment overrides settings from GEOIPUPDATE_* variables found by
// lookup. Pass os.LookupEnv in production.
func WithEnvironment(lookup func(string) (string, bool)) Option {
	return func(s *Settings) error {
		if v, ok := lookup(EnvAccountID); ok && v != "" {
			id, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s: %s", ErrInvalidEnvironmentValue, EnvAccountID, err)
			}
			s.AccountID = id
		}
		if v, ok := lookup(EnvLicenseKey); ok && v != "" {
			s.LicenseKey = strings.TrimSpace(v)
		}
		if v, ok := lookup(EnvEditionIDs); ok && v != "" {
			s.EditionIDs = NewEditions(strings.Fields(v)...)
		}
		if v, ok := lookup(EnvHost); ok && v != "" {
			s.Host = strings.TrimSpace(v)
		}
		return nil
	}
}
