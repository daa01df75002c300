// Package npm provides an HTTP client for npm-compatible registries.
//
// # Overview
//
// The client answers whether a package name is claimed on the public npm
// registry (https://registry.npmjs.org) or its yarn mirror
// (https://registry.yarnpkg.com), and returns the version tagged "latest".
// It serves the npm, yarn, bower and gulp ecosystems.
//
// # Usage
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchPackage(ctx, "left-pad", false)
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // unclaimed
//	}
//
// Scoped names (@scope/name) are escaped into a single path segment.
// A package that was unpublished keeps a document without dist-tags and
// is reported as not found.
package npm
