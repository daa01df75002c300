package deps

import (
	"context"
	"errors"
	"time"

	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
	"github.com/matzehuels/dazed/pkg/observability"
)

// FetchFunc returns the latest public version of dep. It reports an
// explicit absence with an error matching integrations.ErrNotFound.
type FetchFunc func(ctx context.Context, dep Dependency) (string, error)

// RegistryChecker adapts a registry client call to the Checker interface.
type RegistryChecker struct {
	name  string
	fetch FetchFunc
}

// NewRegistryChecker returns a Checker named name backed by fetch.
func NewRegistryChecker(name string, fetch FetchFunc) *RegistryChecker {
	return &RegistryChecker{name: name, fetch: fetch}
}

// Name returns the registry name.
func (c *RegistryChecker) Name() string { return c.name }

// Lookup answers from the manifest when dep carries a recorded source and
// otherwise asks the registry. Only integrations.ErrNotFound counts as
// absence; every other failure is returned as a LOOKUP_FAILED error.
func (c *RegistryChecker) Lookup(ctx context.Context, dep Dependency) (PublicVersion, error) {
	if v, ok := ShortCircuit(dep); ok {
		return v, nil
	}

	start := time.Now()
	version, err := c.fetch(ctx, dep)
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		observability.Scan().OnLookup(ctx, c.name, dep.Name, false, time.Since(start), nil)
		return PublicVersion{Version: NotFoundVersion}, nil
	case err != nil:
		observability.Scan().OnLookup(ctx, c.name, dep.Name, false, time.Since(start), err)
		return PublicVersion{}, dazederrors.Wrap(dazederrors.ErrCodeLookupFailed, err, "lookup %s on %s", dep.Name, c.name)
	}
	observability.Scan().OnLookup(ctx, c.name, dep.Name, true, time.Since(start), nil)
	if version == "" {
		version = UnknownVersion
	}
	return PublicVersion{Version: version, Found: true}, nil
}

// ShortCircuit answers a lookup without a network call when dep records
// where it was sourced from.
func ShortCircuit(dep Dependency) (PublicVersion, bool) {
	if dep.Resolved == "" && !dep.Internal {
		return PublicVersion{}, false
	}
	v := dep.Version
	if v == "" {
		v = UnknownVersion
	}
	return PublicVersion{Version: v, Found: true, ShortCircuit: true}, true
}
