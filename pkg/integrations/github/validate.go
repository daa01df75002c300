package github

import (
	"regexp"

	dazederrors "github.com/matzehuels/dazed/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return dazederrors.New(dazederrors.ErrCodeInvalidInput, "organization is required")
	}
	if !validOwner.MatchString(owner) {
		return dazederrors.New(dazederrors.ErrCodeInvalidInput, "invalid organization %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return dazederrors.New(dazederrors.ErrCodeInvalidInput, "repository is required")
	}
	if !validRepo.MatchString(repo) || repo == "." || repo == ".." {
		return dazederrors.New(dazederrors.ErrCodeInvalidInput, "invalid repository %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}
