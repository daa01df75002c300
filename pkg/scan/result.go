package scan

// FileResult holds the findings for one manifest, lock or config file.
// Overridden files are reported as markers without findings.
type FileResult struct {
	File       string   `json:"file" bson:"file"`
	Ecosystem  string   `json:"ecosystem" bson:"ecosystem"`
	Vulnerable []string `json:"vulnerable" bson:"vulnerable"`
	Sus        []string `json:"sus" bson:"sus"`
	Override   bool     `json:"override" bson:"override"`
	Errors     []string `json:"errors,omitempty" bson:"errors,omitempty"`
}

// RepoResult holds the findings of one repository. Errors lists host
// failures; parse and lookup failures stay with their file.
type RepoResult struct {
	Repo   string       `json:"repo" bson:"repo"`
	Files  []FileResult `json:"files" bson:"files"`
	Errors []string     `json:"errors,omitempty" bson:"errors,omitempty"`
}

// Failed reports whether the repository hit a host failure.
func (r RepoResult) Failed() bool { return len(r.Errors) > 0 }

// Counts returns the number of vulnerable and suspicious names.
func (r RepoResult) Counts() (vulnerable, sus int) {
	for _, f := range r.Files {
		vulnerable += len(f.Vulnerable)
		sus += len(f.Sus)
	}
	return vulnerable, sus
}

// OrgResult holds the findings of one organization.
type OrgResult struct {
	Org      string       `json:"org" bson:"org"`
	ScanTime float64      `json:"scan_time" bson:"scan_time"`
	Repos    []RepoResult `json:"repos" bson:"repos"`
	// Errors names the repositories that still failed after their retry.
	Errors []string `json:"errors,omitempty" bson:"errors,omitempty"`
	// Error is set when the repositories could not be listed.
	Error string `json:"error,omitempty" bson:"error,omitempty"`
}

// Failed reports whether the organization or any of its repositories
// failed.
func (o OrgResult) Failed() bool { return o.Error != "" || len(o.Errors) > 0 }

// Counts returns the number of vulnerable and suspicious names.
func (o OrgResult) Counts() (vulnerable, sus int) {
	for _, r := range o.Repos {
		v, s := r.Counts()
		vulnerable += v
		sus += s
	}
	return vulnerable, sus
}
