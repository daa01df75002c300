// Package packagist provides an HTTP client for the Packagist p2 metadata
// API (https://repo.packagist.org/p2/vendor/package.json), used to check
// Composer dependencies.
package packagist
