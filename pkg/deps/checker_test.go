package deps

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations"
)

func TestRegistryChecker_Lookup(t *testing.T) {
	fetch := func(_ context.Context, dep Dependency) (string, error) {
		switch dep.Name {
		case "lodash":
			return "4.17.21", nil
		case "ghost":
			return "", fmt.Errorf("fetch: %w", integrations.ErrNotFound)
		case "nameless":
			return "", nil
		default:
			return "", fmt.Errorf("fetch: %w", integrations.ErrNetwork)
		}
	}
	c := NewRegistryChecker("npm", fetch)
	ctx := context.Background()

	if c.Name() != "npm" {
		t.Errorf("Name() = %q", c.Name())
	}

	v, err := c.Lookup(ctx, Dependency{Name: "lodash"})
	if err != nil || !v.Found || v.Version != "4.17.21" {
		t.Errorf("Lookup(lodash) = %+v, %v", v, err)
	}

	v, err = c.Lookup(ctx, Dependency{Name: "ghost"})
	if err != nil || v.Found || v.Version != NotFoundVersion {
		t.Errorf("Lookup(ghost) = %+v, %v", v, err)
	}

	v, err = c.Lookup(ctx, Dependency{Name: "nameless"})
	if err != nil || !v.Found || v.Version != UnknownVersion {
		t.Errorf("Lookup(nameless) = %+v, %v", v, err)
	}

	_, err = c.Lookup(ctx, Dependency{Name: "down"})
	if !errors.Is(err, errors.ErrCodeLookupFailed) {
		t.Errorf("Lookup(down) error = %v, want LOOKUP_FAILED", err)
	}
}

func TestRegistryChecker_ShortCircuit(t *testing.T) {
	called := false
	c := NewRegistryChecker("npm", func(context.Context, Dependency) (string, error) {
		called = true
		return "", nil
	})

	v, err := c.Lookup(context.Background(), Dependency{Name: "x", Internal: true})
	if err != nil || !v.Found || v.Version != UnknownVersion {
		t.Errorf("Lookup() = %+v, %v", v, err)
	}
	if called {
		t.Error("fetch must not run for an internally sourced dependency")
	}
}
