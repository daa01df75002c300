// Package config loads dazed settings from defaults, an optional config
// file and the environment.
//
// Precedence, lowest first: built-in defaults, the config file
// ($XDG_CONFIG_HOME/dazed/config.{yaml,toml} or --config), environment
// variables prefixed DAZED_ (DAZED_WORKERS_FILES=10). The host credentials
// also honor GITHUB_URL, GITHUB_AUTH, GITLAB_URL and GITLAB_AUTH.
package config

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/dazed/pkg/cache"
	dazederrors "github.com/matzehuels/dazed/pkg/errors"
)

const (
	// AppName names the config and cache directories.
	AppName = "dazed"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DAZED"
	// FileName is the config file name without extension.
	FileName = "config"
)

// Supported hosts and cache backends.
const (
	HostGitHub = "github"
	HostGitLab = "gitlab"

	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every tunable of a scan.
type Config struct {
	Host      string    `mapstructure:"host"`
	GitHub    HostAuth  `mapstructure:"github"`
	GitLab    HostAuth  `mapstructure:"gitlab"`
	Workers   Workers   `mapstructure:"workers"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
	Keywords  Keywords  `mapstructure:"keywords"`
	Cache     Cache     `mapstructure:"cache"`
	Report    Report    `mapstructure:"report"`
}

// HostAuth locates a repository host.
type HostAuth struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// Workers sets the pool width of each scan tier.
type Workers struct {
	Groups       int `mapstructure:"groups"`
	Repositories int `mapstructure:"repositories"`
	Files        int `mapstructure:"files"`
	Lookups      int `mapstructure:"lookups"`
}

// RateLimit controls the host budget pause.
type RateLimit struct {
	Threshold int           `mapstructure:"threshold"`
	Padding   time.Duration `mapstructure:"padding"`
}

// Keywords drive sourcing and classification decisions. PrivateFile and
// IgnoreFile name newline-separated lists merged into Private and Ignore.
type Keywords struct {
	Internal    []string `mapstructure:"internal"`
	Private     []string `mapstructure:"private"`
	Ignore      []string `mapstructure:"ignore"`
	PrivateFile string   `mapstructure:"private_file"`
	IgnoreFile  string   `mapstructure:"ignore_file"`
}

// Cache selects where HTTP responses and lookup answers are kept.
type Cache struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	Dir           string        `mapstructure:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// Report configures the optional MongoDB sink.
type Report struct {
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host: HostGitHub,
		Workers: Workers{
			Groups:       3,
			Repositories: 200,
			Files:        5,
			Lookups:      15,
		},
		RateLimit: RateLimit{
			Threshold: 500,
			Padding:   2 * time.Second,
		},
		Keywords: Keywords{
			Internal: []string{"internal"},
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     24 * time.Hour,
		},
		Report: Report{
			MongoDatabase:   "dazed",
			MongoCollection: "reports",
		},
	}
}

// LoadOptions locate the config file.
type LoadOptions struct {
	// File is an explicit config file; it must exist.
	File string
	// Dir overrides the directory searched for config.yaml or config.toml.
	Dir string
}

// Load reads the configuration, merges keyword files and validates the
// result. Every failure is an INVALID_CONFIG error.
func Load(opts LoadOptions) (*Config, error) {
	v := newViper()

	switch {
	case opts.File != "":
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, dazederrors.Wrap(dazederrors.ErrCodeInvalidConfig, err, "read config %s", opts.File)
		}
	default:
		dir := opts.Dir
		if dir == "" {
			dir, _ = Dir()
		}
		if dir != "" {
			v.SetConfigName(FileName)
			v.AddConfigPath(dir)
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, dazederrors.Wrap(dazederrors.ErrCodeInvalidConfig, err, "read config in %s", dir)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, dazederrors.Wrap(dazederrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.loadKeywordFiles(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("host", d.Host)
	v.SetDefault("github.url", "")
	v.SetDefault("github.token", "")
	v.SetDefault("gitlab.url", "")
	v.SetDefault("gitlab.token", "")
	v.SetDefault("workers.groups", d.Workers.Groups)
	v.SetDefault("workers.repositories", d.Workers.Repositories)
	v.SetDefault("workers.files", d.Workers.Files)
	v.SetDefault("workers.lookups", d.Workers.Lookups)
	v.SetDefault("ratelimit.threshold", d.RateLimit.Threshold)
	v.SetDefault("ratelimit.padding", d.RateLimit.Padding)
	v.SetDefault("keywords.internal", d.Keywords.Internal)
	v.SetDefault("keywords.private", []string{})
	v.SetDefault("keywords.ignore", []string{})
	v.SetDefault("keywords.private_file", "")
	v.SetDefault("keywords.ignore_file", "")
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("report.mongo_uri", "")
	v.SetDefault("report.mongo_database", d.Report.MongoDatabase)
	v.SetDefault("report.mongo_collection", d.Report.MongoCollection)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("github.url", EnvPrefix+"_GITHUB_URL", "GITHUB_URL")
	_ = v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_AUTH")
	_ = v.BindEnv("gitlab.url", EnvPrefix+"_GITLAB_URL", "GITLAB_URL")
	_ = v.BindEnv("gitlab.token", EnvPrefix+"_GITLAB_TOKEN", "GITLAB_AUTH")
	return v
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return dazederrors.New(dazederrors.ErrCodeInvalidConfig, format, args...)
	}

	switch c.Host {
	case HostGitHub, HostGitLab:
	default:
		return invalid("host must be %q or %q, got %q", HostGitHub, HostGitLab, c.Host)
	}

	widths := []struct {
		key string
		n   int
	}{
		{"workers.groups", c.Workers.Groups},
		{"workers.repositories", c.Workers.Repositories},
		{"workers.files", c.Workers.Files},
		{"workers.lookups", c.Workers.Lookups},
	}
	for _, w := range widths {
		if w.n <= 0 {
			return invalid("%s must be positive, got %d", w.key, w.n)
		}
	}

	if c.RateLimit.Threshold < 0 {
		return invalid("ratelimit.threshold must not be negative, got %d", c.RateLimit.Threshold)
	}
	if c.RateLimit.Padding < 0 {
		return invalid("ratelimit.padding must not be negative, got %s", c.RateLimit.Padding)
	}
	if len(c.Keywords.Internal) == 0 || slices.Contains(c.Keywords.Internal, "") {
		return invalid("keywords.internal must list at least one non-empty keyword")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return invalid("cache.ttl must be positive, got %s", c.Cache.TTL)
	}

	for _, u := range []string{c.GitHub.URL, c.GitLab.URL} {
		if u == "" {
			continue
		}
		if err := dazederrors.ValidateURL(u); err != nil {
			return dazederrors.Wrap(dazederrors.ErrCodeInvalidConfig, err, "host url %q", u)
		}
	}
	return nil
}

// HostAuth returns the credentials of the configured host.
func (c *Config) HostAuth() HostAuth {
	if c.Host == HostGitLab {
		return c.GitLab
	}
	return c.GitHub
}

func (c *Config) loadKeywordFiles() error {
	if c.Keywords.PrivateFile != "" {
		words, err := ReadKeywordFile(c.Keywords.PrivateFile)
		if err != nil {
			return err
		}
		c.Keywords.Private = append(c.Keywords.Private, words...)
	}
	if c.Keywords.IgnoreFile != "" {
		words, err := ReadKeywordFile(c.Keywords.IgnoreFile)
		if err != nil {
			return err
		}
		c.Keywords.Ignore = append(c.Keywords.Ignore, words...)
	}
	return nil
}

// ReadKeywordFile reads one keyword per line. Blank lines and lines
// starting with # are skipped.
func ReadKeywordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dazederrors.Wrap(dazederrors.ErrCodeInvalidConfig, err, "read keyword list")
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, dazederrors.Wrap(dazederrors.ErrCodeInvalidConfig, err, "read keyword list %s", path)
	}
	return words, nil
}

// Dir returns $XDG_CONFIG_HOME/dazed, defaulting to ~/.config/dazed.
func Dir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDir returns cache.dir when set, else the default file cache
// directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
