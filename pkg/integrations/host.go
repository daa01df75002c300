package integrations

import "time"

// Repository is a repository as listed by a source-control host.
type Repository struct {
	Name          string `json:"name"`
	DefaultBranch string `json:"default_branch"`
	Archived      bool   `json:"archived,omitempty"`
	Empty         bool   `json:"empty,omitempty"`
}

// FileEntry is one blob in a repository tree.
type FileEntry struct {
	Path string `json:"path"`
}

// RateStatus is a host's remaining request budget.
type RateStatus struct {
	Remaining int       // Requests left in the current window
	Reset     time.Time // When the window refills
	Unlimited bool      // The host enforces no budget (e.g. some GitHub Enterprise installs)
}
