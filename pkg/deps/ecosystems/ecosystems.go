// Package ecosystems assembles the default ecosystem table.
//
// The order of the table is fixed; a file name matches at most one entry.
//
//  1. npm        package.json, package-lock.json, npm-shrinkwrap.json, .npmrc
//  2. yarn       yarn.lock
//  3. bower      bower.json
//  4. gulp       gulpfile.js
//  5. composer   composer.json, composer.lock
//  6. gems       Gemfile, Gemfile.lock
//  7. pip        requirements.txt, Pipfile, Pipfile.lock
//  8. cocoapods  Podfile, Podfile.lock
//  9. nuget      nuget.config
//  10. maven     pom.xml
//  11. gradle    build.gradle, gradle.build, gradle.lockfile
package ecosystems

import (
	"time"

	"github.com/matzehuels/dazed/pkg/cache"
	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/deps/cocoapods"
	"github.com/matzehuels/dazed/pkg/deps/dotnet"
	"github.com/matzehuels/dazed/pkg/deps/java"
	"github.com/matzehuels/dazed/pkg/deps/javascript"
	"github.com/matzehuels/dazed/pkg/deps/php"
	"github.com/matzehuels/dazed/pkg/deps/python"
	"github.com/matzehuels/dazed/pkg/deps/ruby"
	cocoapodsclient "github.com/matzehuels/dazed/pkg/integrations/cocoapods"
	"github.com/matzehuels/dazed/pkg/integrations/maven"
	"github.com/matzehuels/dazed/pkg/integrations/npm"
	"github.com/matzehuels/dazed/pkg/integrations/packagist"
	"github.com/matzehuels/dazed/pkg/integrations/pypi"
	"github.com/matzehuels/dazed/pkg/integrations/rubygems"
)

// Default builds the ecosystem table backed by the public registries.
// HTTP responses are cached in backend for ttl.
//
// Maven and gradle share a single search.maven.org client so its request
// budget applies to both. npm, bower and gulp share a checker and thus
// share memoized answers.
func Default(backend cache.Cache, ttl time.Duration) (*deps.Table, error) {
	npmChecker := javascript.NewChecker("npm", npm.NewClient(backend, ttl))
	yarnChecker := javascript.NewChecker("yarn", npm.NewClientForRegistry(backend, ttl, npm.YarnRegistry))
	mavenChecker := java.NewChecker(maven.NewClient(backend, ttl))

	return deps.NewTable(
		javascript.NPM(npmChecker),
		javascript.Yarn(yarnChecker),
		javascript.Bower(npmChecker),
		javascript.Gulp(npmChecker),
		php.Composer(php.NewChecker(packagist.NewClient(backend, ttl))),
		ruby.Gems(ruby.NewChecker(rubygems.NewClient(backend, ttl))),
		python.Pip(python.NewChecker(pypi.NewClient(backend, ttl))),
		cocoapods.CocoaPods(cocoapods.NewChecker(cocoapodsclient.NewClient(backend, ttl))),
		dotnet.Nuget(dotnet.NewChecker()),
		java.Maven(mavenChecker),
		java.Gradle(mavenChecker),
	)
}
