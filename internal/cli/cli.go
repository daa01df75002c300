// Package cli implements the dazed command-line interface.
//
// # Commands
//
//   - single: scan one repository
//   - all: scan every repository of one organization
//   - full: scan every organization on the host
//   - cache: manage the registry response cache
//
// Every scan writes a JSON report (-f) and prints a summary of the
// vulnerable and suspicious names it found. With --mongo the report is
// also stored in MongoDB.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one line per registry lookup and repository.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dazed/internal/config"
	"github.com/matzehuels/dazed/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	noCache    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dazed finds dependency confusion across an organization's repositories",
		Long: `dazed scans repositories on GitHub or GitLab for manifest and lock files,
extracts the dependencies they declare and checks each name against its public
registry. Names that are absent publicly can be claimed by an attacker
(vulnerable); names that exist publicly but look internal are suspicious.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/dazed/config.yaml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the registry response cache")

	root.AddCommand(c.singleCommand())
	root.AddCommand(c.allCommand())
	root.AddCommand(c.fullCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration for the current invocation.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: c.configFile})
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	return cfg, nil
}
