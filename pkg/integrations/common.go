package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist.
	// Registry clients return it only for an explicit absence (HTTP 404 or
	// an empty search result).
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrEmptyRepository is returned by repository hosts for a repository
	// without commits.
	ErrEmptyRepository = errors.New("repository is empty")

	// ErrRateLimited is returned when a host rejects a request for budget reasons.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized is returned when the credentials are missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// PathEscape percent-encodes a name for use as a single URL path segment.
func PathEscape(s string) string { return url.PathEscape(s) }

// URLEncode percent-encodes a string for use in URL query values.
func URLEncode(s string) string { return url.QueryEscape(s) }

// HostOf returns the lowercase host of a URL-like string. Inputs without a
// scheme ("git@host:org/repo", "host/path") are handled best-effort.
func HostOf(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	if i := strings.Index(s, "@"); i >= 0 && !strings.Contains(s[:i], "/") {
		s = s[i+1:]
		if j := strings.Index(s, ":"); j >= 0 && !strings.HasPrefix(s[j:], "://") {
			s = s[:j]
		}
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	if i := strings.IndexAny(s, "/:"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}
