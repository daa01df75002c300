// Package gitlab provides a repository host client for the GitLab REST API.
//
// Groups are scanned as organizations and their projects, subgroups
// included, as repositories. A project without commits is reported as
// [integrations.ErrEmptyRepository] rather than as missing.
//
// [integrations]: github.com/matzehuels/dazed/pkg/integrations
package gitlab
