// Package deps finds dependencies that could be claimed on a public
// registry by someone other than their owner.
//
// # Overview
//
// A scan of one repository runs in three steps:
//
//  1. [Table.Resolve] picks the manifests and lockfiles among the
//     repository's paths and marks those that another file overrides
//  2. The file's [Ecosystem] parser turns each remaining file into
//     [Dependency] values
//  3. [Classifier.Classify] looks each dependency up with the ecosystem's
//     [Checker] and buckets the names
//
// # Ecosystems
//
// Each ecosystem subpackage returns a configured [Ecosystem]:
//
//   - [javascript]: npm, yarn, bower, gulp
//   - [php]: composer
//   - [ruby]: gems
//   - [python]: pip
//   - [cocoapods]: cocoapods
//   - [dotnet]: nuget
//   - [java]: maven, gradle
//
// [ecosystems.Default] assembles them into the standard [Table]. The order
// of the table is its priority; no two ecosystems may claim the same file
// name.
//
// # Overrides
//
// A lockfile is more precise than the manifest it was generated from, so a
// lockfile in a directory suppresses that directory's manifests and any
// lockfile ranked before it. A config file that routes every source to an
// internal host suppresses the whole ecosystem in its directory.
//
// # Classification
//
//	cls := deps.NewClassifier(deps.NewLookupCache(nil, 0), ignore, private)
//	res, err := cls.Classify(ctx, eco.Checker, found)
//
// A name that no public registry knows is vulnerable. A name that is known
// publicly but contains a private keyword is suspicious. A lookup failure
// never makes a name vulnerable; it is reported in [Classification.Errors].
//
// [LookupCache] collapses identical lookups across files, repositories and
// organizations.
//
// [javascript]: github.com/matzehuels/dazed/pkg/deps/javascript
// [php]: github.com/matzehuels/dazed/pkg/deps/php
// [ruby]: github.com/matzehuels/dazed/pkg/deps/ruby
// [python]: github.com/matzehuels/dazed/pkg/deps/python
// [cocoapods]: github.com/matzehuels/dazed/pkg/deps/cocoapods
// [dotnet]: github.com/matzehuels/dazed/pkg/deps/dotnet
// [java]: github.com/matzehuels/dazed/pkg/deps/java
// [ecosystems.Default]: github.com/matzehuels/dazed/pkg/deps/ecosystems.Default
package deps
