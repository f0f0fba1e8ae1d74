package api

import (
	"errors"
	"fmt"
)

var (
	ErrEditionNotFound         = errors.New("edition not found")
	ErrInvalidCredentials      = errors.New("invalid account ID or license key")
	ErrMissingVerificationHash = errors.New("response is missing a valid X-Database-MD5 header")
	ErrInvalidFilename         = errors.New("server returned an invalid database filename")
	ErrInvalidBaseURL          = errors.New("invalid update server URL")
)

// HTTPError is returned when the update server answers with an unexpected
// status code. Body holds at most the first 256 bytes of the response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("received HTTP status code %d: %s", e.StatusCode, e.Body)
}
