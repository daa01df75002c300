package deps

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/dazed/pkg/integrations"
)

const (
	DefaultLookupWorkers = 15             // Concurrent registry lookups per classification
	DefaultCacheTTL      = 24 * time.Hour // Default registry response cache duration

	// UnknownVersion is recorded when a manifest declares no version.
	UnknownVersion = "TBD"

	// NotFoundVersion is the version reported for a name that no public
	// registry knows.
	NotFoundVersion = "0.0.0.0"
)

// DefaultInternalKeywords mark a host as internal when they appear in it.
var DefaultInternalKeywords = []string{"internal"}

// Dependency is one declared third-party dependency. Identity for
// deduplication and caching is (checker, Name, Group).
type Dependency struct {
	Name     string `json:"name"`
	Version  string `json:"version"`            // Declared version, UnknownVersion if absent
	Group    string `json:"group,omitempty"`    // Namespace such as a Maven groupId
	Resolved string `json:"resolved,omitempty"` // Source URL recorded by a lockfile
	Internal bool   `json:"internal,omitempty"` // Source is proven internal
}

// Key returns the identity of d within one checker.
func (d Dependency) Key() string {
	return d.Name + "\x00" + d.Group
}

// PublicVersion is the outcome of a registry lookup.
type PublicVersion struct {
	Version string `json:"version"`
	Found   bool   `json:"found"`
	// ShortCircuit is set when the answer came from the manifest itself
	// (a recorded source) without a network call.
	ShortCircuit bool `json:"short_circuit,omitempty"`
}

// Parser turns the content of one manifest, lock or config file into
// dependencies. Parsers are best-effort: unparseable lines are skipped and
// only a wholly unreadable document is an error.
type Parser interface {
	Parse(filename string, content []byte, opts ParseOptions) ([]Dependency, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(filename string, content []byte, opts ParseOptions) ([]Dependency, error)

// Parse calls f.
func (f ParserFunc) Parse(filename string, content []byte, opts ParseOptions) ([]Dependency, error) {
	return f(filename, content, opts)
}

// ConfigParser inspects a registry configuration file.
type ConfigParser interface {
	// AllSourcesInternal reports whether every package source the file
	// declares is internal, which neutralizes the ecosystem's manifests.
	AllSourcesInternal(filename string, content []byte, opts ParseOptions) (bool, error)
}

// ConfigParserFunc adapts a function to the ConfigParser interface.
type ConfigParserFunc func(filename string, content []byte, opts ParseOptions) (bool, error)

// AllSourcesInternal calls f.
func (f ConfigParserFunc) AllSourcesInternal(filename string, content []byte, opts ParseOptions) (bool, error) {
	return f(filename, content, opts)
}

// Checker looks a dependency up in one public registry.
type Checker interface {
	// Name identifies the registry. Checkers sharing a name share cached results.
	Name() string
	// Lookup reports whether dep exists publicly. An explicit absence is
	// PublicVersion{Found: false} with a nil error; any other failure is an error.
	Lookup(ctx context.Context, dep Dependency) (PublicVersion, error)
}

// ParseOptions carries the sourcing heuristics into parsers.
type ParseOptions struct {
	InternalKeywords []string
}

// WithDefaults returns a copy of o with DefaultInternalKeywords filled in.
func (o ParseOptions) WithDefaults() ParseOptions {
	if len(o.InternalKeywords) == 0 {
		o.InternalKeywords = DefaultInternalKeywords
	}
	return o
}

// IsInternalURL reports whether the host of raw contains an internal keyword.
func (o ParseOptions) IsInternalURL(raw string) bool {
	host := integrations.HostOf(raw)
	if host == "" {
		return false
	}
	return containsAny(host, o.InternalKeywords)
}

// AllInternal reports whether urls is non-empty and every entry is an
// internal URL.
func (o ParseOptions) AllInternal(urls []string) bool {
	if len(urls) == 0 {
		return false
	}
	for _, u := range urls {
		if !o.IsInternalURL(u) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// LooksLikeURL reports whether s parses as an absolute URL or a
// scheme-less git remote.
func LooksLikeURL(s string) bool {
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return true
	}
	return strings.HasPrefix(s, "git@")
}
