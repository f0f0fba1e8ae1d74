package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxErrorBody bounds how much of an unexpected response is read back.
const maxErrorBody = 256

// maxFilenameLength is the longest file name accepted from the server.
const maxFilenameLength = 255

// request describes a GET against the update server. Path segments are
// escaped one by one so an edition ID can never change the route.
type request struct {
	segments []string
	query    url.Values
	auth     bool
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	escaped := make([]string, len(r.segments))
	for i, s := range r.segments {
		escaped[i] = url.PathEscape(s)
	}
	target := strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.Join(escaped, "/")
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if r.auth {
		req.SetBasicAuth(strconv.Itoa(c.accountID), c.licenseKey)
	}
	return req, nil
}

// readErrorBody reads a bounded prefix of body and closes it.
func readErrorBody(body io.ReadCloser) string {
	defer body.Close()
	buf, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return string(buf)
}
