// Package maven provides an HTTP client for the Maven Central search API.
//
// # Overview
//
// The client searches https://search.maven.org for an artifactId,
// optionally narrowed by groupId, and reports the latest version of the
// first hit. Zero hits means the coordinate is unclaimed. It serves both
// the maven (pom.xml) and gradle ecosystems.
//
// # Throttling
//
// Maven Central search rejects bursts, so every Client is limited to
// [RequestsPerSecond] requests. The limit is enforced inside the client and
// holds no matter how many lookup workers share it.
package maven
