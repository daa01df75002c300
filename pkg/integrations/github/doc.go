// Package github provides a repository host client for the GitHub REST API.
//
// # Overview
//
// [Host] lists the organizations of an instance, the repositories of an
// organization and the blobs of a repository tree, fetches raw file
// content, and reports the remaining core API budget. It targets both
// github.com and GitHub Enterprise Server.
//
// # Errors
//
// Errors wrap the [integrations] sentinels, so callers can test for
// absence and emptiness without parsing messages:
//
//	files, err := host.ListFiles(ctx, "acme", "web", "main")
//	if errors.Is(err, integrations.ErrEmptyRepository) {
//	    // nothing to scan
//	}
//
// GitHub answers 409 Conflict for the tree of a repository without commits;
// that status is mapped to [integrations.ErrEmptyRepository].
//
// [integrations]: github.com/matzehuels/dazed/pkg/integrations
package github
