package config

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// aliases maps directives sharing a value to their canonical name.
var aliases = map[string]string{
	"UserId":     "AccountID",
	"ProductIds": "EditionIDs",
}

// parseDirectives reads the GeoIP.conf format: one "Name value" directive per
// line, blank lines and lines starting with # ignored.
func parseDirectives(s *Settings, data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	seen := map[string]struct{}{}
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return fmt.Errorf("%w: line %d: %q", ErrInvalidDirective, lineNumber, line)
		}
		key, value := fields[0], strings.Join(fields[1:], " ")

		canonical := key
		if alias, ok := aliases[key]; ok {
			canonical = alias
		}
		if _, ok := seen[canonical]; ok {
			return fmt.Errorf("%w: `%s'", ErrDuplicateDirective, key)
		}
		seen[canonical] = struct{}{}

		if err := applyDirective(s, canonical, value, fields[1:]); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrReadingConfig, err)
	}
	return nil
}

func applyDirective(s *Settings, key, value string, values []string) error {
	var err error
	switch key {
	case "AccountID":
		s.AccountID, err = strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: account ID %q", ErrInvalidValue, value)
		}
	case "LicenseKey":
		s.LicenseKey = value
	case "EditionIDs":
		s.EditionIDs = NewEditions(values...)
	case "DatabaseDirectory":
		s.DatabaseDirectory = filepath.Clean(value)
	case "Host":
		s.Host = value
	case "LockFile":
		s.LockFile = filepath.Clean(value)
	case "PreserveFileTimes":
		s.PreserveFileTimes, err = parseFlag(key, value)
	case "Proxy":
		s.proxyURL = value
	case "ProxyUserPassword":
		s.proxyUserInfo = value
	case "RetryFor":
		s.RetryFor, err = parseDuration(key, value)
	case "HTTPTimeout":
		s.HTTPTimeout, err = parseDuration(key, value)
	case "S3Bucket":
		s.S3.Bucket = value
	case "S3Prefix":
		s.S3.Prefix = value
	case "S3Region":
		s.S3.Region = value
	case "S3Endpoint":
		s.S3.Endpoint = value
	case "S3AccessKeyID":
		s.S3.AccessKeyID = value
	case "S3SecretAccessKey":
		s.S3.SecretAccessKey = value
	case "S3DisableServerSideEncryption":
		s.S3.DisableServerSideEncryption, err = parseFlag(key, value)
	case "Protocol", "SkipHostnameVerification", "SkipPeerVerification":
		// Deprecated, accepted for compatibility.
	default:
		return fmt.Errorf("%w: `%s'", ErrUnknownDirective, key)
	}
	return err
}

func parseFlag(key, value string) (bool, error) {
	switch value {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("%w: `%s' must be 0 or 1", ErrInvalidValue, key)
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: `%s': '%s' is not a valid duration", ErrInvalidValue, key, value)
	}
	return d, nil
}
