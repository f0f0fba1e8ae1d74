// Package api talks to the database update server.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/integrity"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultUserAgent is sent when Options.UserAgent is empty.
	DefaultUserAgent = "geoipupdate"

	hashHeader = "X-Database-MD5"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the scheme and host of the update server.
	BaseURL string
	// AccountID and LicenseKey are sent as basic auth on downloads.
	AccountID  int
	LicenseKey string
	// Proxy, when set, is used for every request.
	Proxy *url.URL
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// RetryFor enables retries of transport errors and 5xx responses for up
	// to this long. Zero disables retries.
	RetryFor time.Duration
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// HTTPClient replaces the client built from Proxy and Timeout.
	HTTPClient *http.Client
}

// Client performs the filename lookup and the conditional download.
type Client struct {
	baseURL    *url.URL
	accountID  int
	licenseKey string
	userAgent  string
	retryFor   time.Duration
	httpClient *http.Client
}

// Update is the outcome of a conditional download. When NotModified is false
// the caller owns Body and must close it.
type Update struct {
	NotModified  bool
	ExpectedHash string
	// ModifiedAt is the server side modification time, zero when the server
	// did not send a parseable Last-Modified header.
	ModifiedAt time.Time
	Body       io.ReadCloser
}

// NewClient creates a Client. The default transport is cloned, so setting a
// proxy never affects other HTTP users in the process.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.Proxy != nil {
			transport.Proxy = http.ProxyURL(opts.Proxy)
		}
		httpClient = &http.Client{Transport: transport, Timeout: opts.Timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    base,
		accountID:  opts.AccountID,
		licenseKey: opts.LicenseKey,
		userAgent:  userAgent,
		retryFor:   opts.RetryFor,
		httpClient: httpClient,
	}, nil
}

// GetFilename asks the server for the file name the edition is stored under.
func (c *Client) GetFilename(ctx context.Context, editionID string) (string, error) {
	req, err := c.newRequest(ctx, request{
		segments: []string{"app", "update_getfilename"},
		query:    url.Values{"product_id": {editionID}},
	})
	if err != nil {
		return "", err
	}

	log.Debugf("Performing get filename request to %s", req.URL)
	resp, err := c.do(req)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return "", fmt.Errorf("%w: %s: %s", ErrEditionNotFound, editionID, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readErrorBody(resp.Body)
		return "", fmt.Errorf("%w: %s: %s", ErrEditionNotFound, editionID, (&HTTPError{StatusCode: resp.StatusCode, Body: body}).Error())
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxFilenameLength+1))
	if err != nil {
		return "", fmt.Errorf("reading filename response: %w", err)
	}
	if len(buf) > maxFilenameLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidFilename, maxFilenameLength)
	}
	filename := string(buf)
	if filename == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrEditionNotFound, editionID)
	}
	if strings.ContainsAny(filename, "\n\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return filename, nil
}

// Download requests the edition unless the server copy still hashes to
// localHash.
func (c *Client) Download(ctx context.Context, editionID, localHash string) (*Update, error) {
	req, err := c.newRequest(ctx, request{
		segments: []string{"geoip", "databases", editionID, "update"},
		query:    url.Values{"db_md5": {localHash}},
		auth:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("Performing update request to %s", req.URL)
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		resp.Body.Close()
		return &Update{NotModified: true}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	expected := resp.Header.Get(hashHeader)
	if !integrity.IsValidHash(expected) {
		resp.Body.Close()
		return nil, ErrMissingVerificationHash
	}

	var modifiedAt time.Time
	if v := resp.Header.Get("Last-Modified"); v != "" {
		t, err := http.ParseTime(v)
		if err != nil {
			log.Debugf("Ignoring invalid Last-Modified header %q: %v", v, err)
		} else {
			modifiedAt = t
		}
	}

	return &Update{
		ExpectedHash: expected,
		ModifiedAt:   modifiedAt,
		Body:         resp.Body,
	}, nil
}

// do sends req. Responses with a 5xx status are turned into *HTTPError so
// they can be retried when RetryFor is set.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	op := func() error {
		r, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			return &HTTPError{StatusCode: r.StatusCode, Body: readErrorBody(r.Body)}
		}
		resp = r
		return nil
	}

	if c.retryFor <= 0 {
		if err := op(); err != nil {
			return nil, err
		}
		return resp, nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = c.retryFor
	notify := func(err error, wait time.Duration) {
		log.Warnf("Request to %s failed, retrying in %s: %v", req.URL.Path, wait, err)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(exp, req.Context()), notify); err != nil {
		return nil, err
	}
	return resp, nil
}
