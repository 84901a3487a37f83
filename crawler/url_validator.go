package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var ErrInvalidURL = errors.New("invalid URL")

var fetchSchemes = []string{"http", "https"}

// ValidateFetchURL rejects URLs the fetcher cannot download: anything that is
// not absolute http(s) with a host.
func ValidateFetchURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !slices.Contains(fetchSchemes, u.Scheme) {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}
