package scan

import (
	"context"

	"github.com/matzehuels/dazed/pkg/integrations"
)

// Host is a source-control host that can enumerate and read repositories.
//
// ListFiles reports a repository without commits with an error matching
// integrations.ErrEmptyRepository and a missing repository with
// integrations.ErrNotFound. Both are treated as an empty repository.
type Host interface {
	Name() string
	ListOrganizations(ctx context.Context) ([]string, error)
	ListRepositories(ctx context.Context, org string) ([]integrations.Repository, error)
	ListFiles(ctx context.Context, org, repo, branch string) ([]integrations.FileEntry, error)
	FileContent(ctx context.Context, org, repo, path string) ([]byte, error)
	RateLimit(ctx context.Context) (integrations.RateStatus, error)
}
