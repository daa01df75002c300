// Package pypi provides an HTTP client for the Python Package Index.
//
// # Overview
//
// The client queries https://pypi.org/pypi/<name>/json and reports the
// latest release. Names are normalized per PEP 503 before the request, so
// "Typing_Extensions" and "typing-extensions" share one cache entry.
package pypi
