// Package report assembles scan results into a report and stores it.
//
// A [Report] wraps the organization results of one scan with a recap of
// what was scanned and found. Reports are written as indented JSON files
// with [ExportJSON] or inserted into MongoDB with a [MongoSink].
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dazed/pkg/scan"
)

// Report is the result of one scan.
type Report struct {
	ID           string           `json:"id" bson:"_id"`
	Host         string           `json:"host" bson:"host"`
	StartedAt    time.Time        `json:"started_at" bson:"started_at"`
	OrgsScanned  int              `json:"orgs_scanned" bson:"orgs_scanned"`
	ReposScanned int              `json:"repos_scanned" bson:"repos_scanned"`
	Vulnerable   int              `json:"vulnerable" bson:"vulnerable"`
	Sus          int              `json:"sus" bson:"sus"`
	TimeElapsed  float64          `json:"time_elapsed" bson:"time_elapsed"`
	Orgs         []scan.OrgResult `json:"orgs" bson:"orgs"`
}

// New builds a report for orgs scanned on host since started.
func New(host string, started time.Time, orgs []scan.OrgResult) *Report {
	r := &Report{
		ID:          uuid.NewString(),
		Host:        host,
		StartedAt:   started.UTC(),
		OrgsScanned: len(orgs),
		TimeElapsed: time.Since(started).Seconds(),
		Orgs:        orgs,
	}
	if r.Orgs == nil {
		r.Orgs = []scan.OrgResult{}
	}
	for _, o := range orgs {
		r.ReposScanned += len(o.Repos)
		v, s := o.Counts()
		r.Vulnerable += v
		r.Sus += s
	}
	return r
}

// Finding is one vulnerable or suspicious name with its location.
type Finding struct {
	Org  string
	Repo string
	File string
	Name string
	Sus  bool
}

// Findings lists every vulnerable and suspicious name in report order.
func (r *Report) Findings() []Finding {
	var out []Finding
	for _, o := range r.Orgs {
		for _, repo := range o.Repos {
			for _, f := range repo.Files {
				for _, n := range f.Vulnerable {
					out = append(out, Finding{Org: o.Org, Repo: repo.Repo, File: f.File, Name: n})
				}
				for _, n := range f.Sus {
					out = append(out, Finding{Org: o.Org, Repo: repo.Repo, File: f.File, Name: n, Sus: true})
				}
			}
		}
	}
	return out
}

// Sink stores finished reports.
type Sink interface {
	Store(ctx context.Context, r *Report) error
}
