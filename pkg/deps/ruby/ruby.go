// Package ruby recognizes Bundler projects and looks gem names up on
// rubygems.org.
package ruby

import (
	"context"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/integrations/rubygems"
)

// NewChecker returns a checker backed by the RubyGems API.
func NewChecker(client *rubygems.Client) deps.Checker {
	return deps.NewRegistryChecker("rubygems", func(ctx context.Context, dep deps.Dependency) (string, error) {
		g, err := client.FetchGem(ctx, dep.Name, false)
		if err != nil {
			return "", err
		}
		return g.Version, nil
	})
}

// Gems returns the Bundler ecosystem.
func Gems(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "gems",
		ManifestFiles: []string{"Gemfile"},
		LockFiles:     []string{"Gemfile.lock"},
		Parser:        GemParser{},
		Checker:       checker,
	}
}
