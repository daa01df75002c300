// Package integrations provides HTTP clients for public package registries
// and for the source-control hosts that are scanned.
//
// # Overview
//
// Registry clients answer one question per dependency: does this name exist
// publicly, and what is its latest version. Each registry has its own
// subpackage:
//
//   - [npm]: npm and yarn registries (also used for bower and gulp)
//   - [maven]: Maven Central search (maven and gradle)
//   - [packagist]: PHP Composer packages
//   - [pypi]: Python Package Index
//   - [rubygems]: Ruby gems
//   - [cocoapods]: CocoaPods trunk search
//
// Host clients list organizations, repositories and files:
//
//   - [github]: GitHub and GitHub Enterprise REST API
//   - [gitlab]: GitLab REST API (groups act as organizations)
//
// # Client Pattern
//
// All registry clients follow a consistent pattern:
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchPackage(ctx, "left-pad", false) // false = use cache
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // the name is unclaimed on the public registry
//	}
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality: response caching
// via [cache.Cache], retries with backoff for transient failures, a
// per-client circuit breaker, and an optional requests-per-second limiter
// for registries that enforce one.
//
// Only an explicit absence maps to [ErrNotFound]. Timeouts, 5xx responses
// and an open breaker surface as [ErrNetwork] so callers never confuse a
// failed lookup with an unclaimed name.
//
// [npm]: github.com/matzehuels/dazed/pkg/integrations/npm
// [maven]: github.com/matzehuels/dazed/pkg/integrations/maven
// [packagist]: github.com/matzehuels/dazed/pkg/integrations/packagist
// [pypi]: github.com/matzehuels/dazed/pkg/integrations/pypi
// [rubygems]: github.com/matzehuels/dazed/pkg/integrations/rubygems
// [cocoapods]: github.com/matzehuels/dazed/pkg/integrations/cocoapods
// [github]: github.com/matzehuels/dazed/pkg/integrations/github
// [gitlab]: github.com/matzehuels/dazed/pkg/integrations/gitlab
package integrations
