// Package php recognizes Composer projects and looks names up on
// Packagist.
package php

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/integrations/packagist"
)

// NewChecker returns a checker backed by the Packagist p2 API.
func NewChecker(client *packagist.Client) deps.Checker {
	return deps.NewRegistryChecker("packagist", func(ctx context.Context, dep deps.Dependency) (string, error) {
		p, err := client.FetchPackage(ctx, dep.Name, false)
		if err != nil {
			return "", err
		}
		return p.Version, nil
	})
}

// Composer returns the composer ecosystem.
func Composer(checker deps.Checker) *deps.Ecosystem {
	return &deps.Ecosystem{
		Name:          "composer",
		ManifestFiles: []string{"composer.json"},
		LockFiles:     []string{"composer.lock"},
		Parser:        ComposerParser{},
		Checker:       checker,
	}
}

// ComposerParser reads composer.json and composer.lock.
//
// Platform requirements (php, ext-*, lib-*) are skipped. Locked packages
// record their source repository; those hosted internally are marked
// internal, the others are answered without a registry call.
type ComposerParser struct{}

type composerManifest struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

type composerLock struct {
	Packages    []lockedPackage `json:"packages"`
	PackagesDev []lockedPackage `json:"packages-dev"`
}

type lockedPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  struct {
		URL string `json:"url"`
	} `json:"source"`
	Dist struct {
		URL string `json:"url"`
	} `json:"dist"`
}

// Parse implements deps.Parser.
func (ComposerParser) Parse(filename string, content []byte, opts deps.ParseOptions) ([]deps.Dependency, error) {
	opts = opts.WithDefaults()
	if strings.EqualFold(filename, "composer.lock") {
		var lock composerLock
		if err := json.Unmarshal(content, &lock); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", filename)
		}
		var out []deps.Dependency
		for _, p := range append(lock.Packages, lock.PackagesDev...) {
			if p.Name == "" || isPlatform(p.Name) {
				continue
			}
			src := p.Source.URL
			if src == "" {
				src = p.Dist.URL
			}
			dep := deps.Dependency{Name: p.Name, Version: p.Version, Resolved: src, Internal: opts.IsInternalURL(src)}
			if dep.Version == "" {
				dep.Version = deps.UnknownVersion
			}
			out = append(out, dep)
		}
		return out, nil
	}

	var m composerManifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", filename)
	}
	var out []deps.Dependency
	for _, req := range []map[string]string{m.Require, m.RequireDev} {
		names := make([]string, 0, len(req))
		for n := range req {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if isPlatform(n) {
				continue
			}
			v := req[n]
			if v == "" {
				v = deps.UnknownVersion
			}
			out = append(out, deps.Dependency{Name: n, Version: v})
		}
	}
	return out, nil
}

// isPlatform reports whether name is a Composer platform package rather
// than a Packagist one.
func isPlatform(name string) bool {
	n := strings.ToLower(name)
	return n == "php" || n == "hhvm" || n == "composer" || n == "composer-plugin-api" || n == "composer-runtime-api" ||
		strings.HasPrefix(n, "php-") || strings.HasPrefix(n, "ext-") || strings.HasPrefix(n, "lib-")
}
