// Package python recognizes pip and Pipenv projects and looks names up on
// PyPI.
package python

import (
	"context"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/integrations/pypi"
)

// NewChecker returns a checker backed by the PyPI JSON API.
func NewChecker(client *pypi.Client) deps.Checker {
	return deps.NewRegistryChecker("pypi", func(ctx context.Context, dep deps.Dependency) (string, error) {
		p, err := client.FetchPackage(ctx, dep.Name, false)
		if err != nil {
			return "", err
		}
		return p.Version, nil
	})
}

// Pip returns the pip ecosystem. Pipfile.lock overrides both
// requirements.txt and Pipfile in its directory.
func Pip(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "pip",
		ManifestFiles: []string{"requirements.txt", "Pipfile"},
		LockFiles:     []string{"Pipfile.lock"},
		Parser:        PipParser{},
		Checker:       checker,
	}
}
