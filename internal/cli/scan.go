package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	dazederrors "github.com/matzehuels/dazed/pkg/errors"
	"github.com/matzehuels/dazed/pkg/report"
	"github.com/matzehuels/dazed/pkg/scan"
)

// scanOptions holds the flags shared by the scan commands.
type scanOptions struct {
	org    string
	repo   string
	output string
	mongo  bool
}

func addOutputFlags(cmd *cobra.Command, opts *scanOptions) {
	cmd.Flags().StringVarP(&opts.output, "file", "f", "results.json", "write the JSON report to this file")
	cmd.Flags().BoolVar(&opts.mongo, "mongo", false, "also store the report in MongoDB (report.mongo_uri)")
}

// singleCommand creates the "single" command.
func (c *CLI) singleCommand() *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:     "single",
		Short:   "Scan a single repository",
		Example: `  dazed single -o acme -r web -f web.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateNames(opts.org, opts.repo); err != nil {
				return err
			}
			return c.runScan(cmd.Context(), opts, func(ctx context.Context, s *scan.Scanner) ([]scan.OrgResult, error) {
				return scanSingle(ctx, s, opts.org, opts.repo)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.org, "org", "o", "", "organization (GitLab: group) owning the repository")
	cmd.Flags().StringVarP(&opts.repo, "repo", "r", "", "repository name")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("repo")
	addOutputFlags(cmd, &opts)
	return cmd
}

// allCommand creates the "all" command.
func (c *CLI) allCommand() *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:     "all",
		Short:   "Scan every repository of an organization",
		Example: `  dazed all -o acme -f acme.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateNames(opts.org); err != nil {
				return err
			}
			return c.runScan(cmd.Context(), opts, func(ctx context.Context, s *scan.Scanner) ([]scan.OrgResult, error) {
				return []scan.OrgResult{s.ScanOrganization(ctx, opts.org)}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.org, "org", "o", "", "organization (GitLab: group) to scan")
	_ = cmd.MarkFlagRequired("org")
	addOutputFlags(cmd, &opts)
	return cmd
}

// fullCommand creates the "full" command.
func (c *CLI) fullCommand() *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "full",
		Short: "Scan every organization on the host",
		Long: `Scan every organization visible to the configured token.

Organizations are split into worker groups (workers.groups) that run
concurrently; each group scans its organizations one after another with
workers.repositories repositories in flight.`,
		Example: `  GITHUB_AUTH=ghp_... dazed full -f fleet.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(cmd.Context(), opts, func(ctx context.Context, s *scan.Scanner) ([]scan.OrgResult, error) {
				return s.ScanFleet(ctx)
			})
		},
	}
	addOutputFlags(cmd, &opts)
	return cmd
}

type scanFunc func(ctx context.Context, s *scan.Scanner) ([]scan.OrgResult, error)

// runScan builds the environment, runs fn and stores and summarizes the
// report.
func (c *CLI) runScan(ctx context.Context, opts scanOptions, fn scanFunc) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.mongo && cfg.Report.MongoURI == "" {
		return dazederrors.New(dazederrors.ErrCodeInvalidConfig, "--mongo requires report.mongo_uri (DAZED_REPORT_MONGO_URI)")
	}

	env, err := c.newEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	stats := newScanStats(c.Logger)
	stats.install()

	prog := newProgress(c.Logger)
	started := time.Now()
	orgs, err := fn(ctx, env.scanner)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done("Scan complete")

	rep := report.New(env.scanner.Host().Name(), started, orgs)
	if err := (report.FileSink{Path: opts.output}).Store(ctx, rep); err != nil {
		return err
	}
	printSuccess("Report written")
	printFile(opts.output)

	if opts.mongo {
		if err := storeMongo(ctx, cfg.Report.MongoURI, cfg.Report.MongoDatabase, cfg.Report.MongoCollection, rep); err != nil {
			printError("MongoDB: %v", err)
		} else {
			printSuccess("Report %s stored in MongoDB", rep.ID)
		}
	}

	printSummary(rep, stats)
	return nil
}

func storeMongo(ctx context.Context, uri, database, collection string, rep *report.Report) error {
	sink, err := report.NewMongoSink(ctx, uri, database, collection)
	if err != nil {
		return err
	}
	defer sink.Close(context.Background())
	return sink.Store(ctx, rep)
}

// scanSingle scans one repository and wraps it in an organization result.
// A repository that hits a host failure is retried once.
func scanSingle(ctx context.Context, s *scan.Scanner, org, name string) ([]scan.OrgResult, error) {
	start := time.Now()
	repos, err := s.Host().ListRepositories(ctx, org)
	if err != nil {
		return nil, err
	}
	for _, r := range repos {
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		res := s.ScanRepository(ctx, org, r)
		if res.Failed() {
			res = s.ScanRepository(ctx, org, r)
		}
		o := scan.OrgResult{Org: org, Repos: []scan.RepoResult{res}}
		if res.Failed() {
			o.Errors = []string{res.Repo}
		}
		o.ScanTime = time.Since(start).Seconds()
		return []scan.OrgResult{o}, nil
	}
	return nil, dazederrors.New(dazederrors.ErrCodeNotFound, "repository %s/%s not found", org, name)
}

func validateNames(names ...string) error {
	for _, n := range names {
		if err := dazederrors.ValidateOwnerName(n); err != nil {
			return err
		}
	}
	return nil
}
