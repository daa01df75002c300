// Package cache provides the byte-level cache shared by registry lookups and
// repository host calls.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as JSON files under a directory (CLI default)
//   - [RedisCache] shares entries between concurrent scanner processes
//   - [NullCache] disables caching
//
// Keys are produced by a [Keyer] so that every component derives them the
// same way.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL-aware byte store. Implementations must be safe for
// concurrent use; a miss is reported as ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body within a client namespace.
	HTTPKey(namespace, key string) string

	// LookupKey keys a classified registry lookup for one dependency.
	LookupKey(checker, name, group string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LookupKey returns "lookup:<checker>:<hash>" where the hash covers name and group.
func (DefaultKeyer) LookupKey(checker, name, group string) string {
	return hashKey("lookup:"+checker, name, group)
}
