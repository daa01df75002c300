package javascript

import (
	"context"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/integrations/npm"
)

// NewChecker returns a checker named name backed by an npm-compatible
// registry client.
func NewChecker(name string, client *npm.Client) deps.Checker {
	return deps.NewRegistryChecker(name, func(ctx context.Context, dep deps.Dependency) (string, error) {
		p, err := client.FetchPackage(ctx, dep.Name, false)
		if err != nil {
			return "", err
		}
		return p.Version, nil
	})
}

// NPM returns the npm ecosystem: package.json, its lockfiles and .npmrc.
// npm-shrinkwrap.json takes precedence over package-lock.json.
func NPM(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "npm",
		ManifestFiles: []string{"package.json"},
		LockFiles:     []string{"package-lock.json", "npm-shrinkwrap.json"},
		ConfigFiles:   []string{".npmrc"},
		Parser:        NPMParser{},
		Config:        NPMRCParser{},
		Checker:       checker,
	}
}

// Yarn returns the yarn.lock ecosystem.
func Yarn(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:      "yarn",
		LockFiles: []string{"yarn.lock"},
		Parser:    YarnParser{},
		Checker:   checker,
	}
}

// Bower returns the bower.json ecosystem. Bower packages resolve through
// the npm registry.
func Bower(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "bower",
		ManifestFiles: []string{"bower.json"},
		Parser:        BowerParser{},
		Checker:       checker,
	}
}

// Gulp returns the gulpfile.js ecosystem.
func Gulp(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "gulp",
		ManifestFiles: []string{"gulpfile.js"},
		Parser:        GulpParser{},
		Checker:       checker,
	}
}
