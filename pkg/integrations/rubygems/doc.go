// Package rubygems provides an HTTP client for the RubyGems API
// (https://rubygems.org/api/v1/gems/<name>.json).
package rubygems
