// Package feed connects to the realtime CPU feed and hands each decoded
// sample set to a handler.
package feed

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Well-known server paths.
const (
	RealtimePath = "/realtime/cpus"
	SnapshotPath = "/api/cpus"
)

// ErrUnsupportedScheme is returned for page URLs that are not http(s) or ws(s).
var ErrUnsupportedScheme = errors.New("unsupported page scheme")

// TargetURL derives the push connection target from the page location: the
// path becomes /realtime/cpus and http/https map to ws/wss.
func TargetURL(page string) (*url.URL, error) {
	u, err := resolve(page, RealtimePath)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u, nil
}

// SnapshotURL derives the one-shot /api/cpus URL on the page origin. ws/wss
// pages map back to http/https.
func SnapshotURL(page string) (*url.URL, error) {
	u, err := resolve(page, SnapshotPath)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	return u, nil
}

func resolve(page, path string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(page))
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	base.Scheme = strings.ToLower(base.Scheme)
	switch base.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("page url %q has no host", page)
	}
	return base.ResolveReference(&url.URL{Path: path}), nil
}
