// Package scan walks a source-control host looking for dependency
// confusion.
//
// A [Scanner] works at three nested levels:
//
//   - Fleet: every organization on the host, partitioned by stride into a
//     fixed number of groups that run concurrently.
//   - Organization: every repository of one organization, scanned by a
//     bounded worker pool.
//   - Repository: the manifest files in the repository tree, fetched and
//     classified by a small bounded pool.
//
// Failures stay at the smallest unit that produced them. A file that fails
// to parse carries its own error list; a repository whose host calls fail
// is retried once after its organization's first pass and otherwise listed
// in the organization's errors. Scans always return a best-effort result.
//
// Before every repository the scanner consults the host's request budget
// through a [RateGate] and sleeps until the budget refills when it runs low.
//
// All result slices are sorted before they are returned, so output is
// deterministic regardless of which worker finished first.
package scan
