package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var schemeRE = regexp.MustCompile(`(?i)\A([a-z][a-z0-9+\-.]*)://`)

// parseProxy builds the proxy URL from the Proxy and ProxyUserPassword
// values. A proxy without scheme is http, and a proxy without port uses 1080.
// Credentials embedded in the proxy take precedence over userPassword.
func parseProxy(proxy, userPassword string) (*url.URL, error) {
	if proxy == "" {
		return nil, nil
	}

	matches := schemeRE.FindStringSubmatch(proxy)
	if matches == nil {
		proxy = "http://" + proxy
	} else {
		scheme := strings.ToLower(matches[1])
		if scheme != "http" && scheme != "https" && scheme != "socks5" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProxy, scheme)
		}
	}

	u, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("%w: proxy: %s", ErrInvalidValue, err)
	}
	if u.Port() == "" {
		u.Host += ":1080"
	}

	if u.User != nil || userPassword == "" {
		return u, nil
	}

	user, password, ok := strings.Cut(userPassword, ":")
	if !ok {
		return nil, ErrMalformedProxyUserInfo
	}
	u.User = url.UserPassword(user, password)
	return u, nil
}
