package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	dazederrors "github.com/matzehuels/dazed/pkg/errors"
)

// isolate points the config lookup at an empty directory and clears host
// variables that may be set on the machine running the tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"GITHUB_URL", "GITHUB_AUTH", "GITLAB_URL", "GITLAB_AUTH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Keywords.Private)+len(cfg.Keywords.Ignore) != 0 {
		t.Errorf("keywords = %+v, want no private or ignored names", cfg.Keywords)
	}
	cfg.Keywords.Private, cfg.Keywords.Ignore = nil, nil
	if want := Default(); !reflect.DeepEqual(*cfg, want) {
		t.Errorf("Load() =\n%+v\nwant\n%+v", *cfg, want)
	}
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, AppName, "config.yaml"), `
host: gitlab
gitlab:
  url: https://gitlab.acme.com
workers:
  repositories: 50
ratelimit:
  padding: 5s
keywords:
  internal: [corp, internal]
  private: [acme]
cache:
  backend: none
`)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host != HostGitLab || cfg.HostAuth().URL != "https://gitlab.acme.com" {
		t.Errorf("host = %q %+v", cfg.Host, cfg.HostAuth())
	}
	if cfg.Workers.Repositories != 50 || cfg.Workers.Files != 5 {
		t.Errorf("workers = %+v", cfg.Workers)
	}
	if cfg.RateLimit.Padding != 5*time.Second {
		t.Errorf("padding = %v", cfg.RateLimit.Padding)
	}
	if !reflect.DeepEqual(cfg.Keywords.Internal, []string{"corp", "internal"}) {
		t.Errorf("internal = %v", cfg.Keywords.Internal)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "scan.toml")
	writeFile(t, path, "[workers]\nfiles = 9\n")

	cfg, err := Load(LoadOptions{File: path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers.Files != 9 {
		t.Errorf("workers.files = %d, want 9", cfg.Workers.Files)
	}

	_, err = Load(LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	if !dazederrors.Is(err, dazederrors.ErrCodeInvalidConfig) {
		t.Errorf("missing explicit file: error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("DAZED_WORKERS_LOOKUPS", "30")
	t.Setenv("DAZED_RATELIMIT_THRESHOLD", "100")
	t.Setenv("GITHUB_AUTH", "ghp_secret")
	t.Setenv("GITHUB_URL", "https://ghe.acme.com/api/v3")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers.Lookups != 30 || cfg.RateLimit.Threshold != 100 {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Workers, cfg.RateLimit)
	}
	if got := cfg.HostAuth(); got.Token != "ghp_secret" || got.URL != "https://ghe.acme.com/api/v3" {
		t.Errorf("HostAuth() = %+v", got)
	}
}

func TestLoad_KeywordFiles(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	private := filepath.Join(dir, "private.txt")
	writeFile(t, private, "# team prefixes\nacme\n\n  corp-  \n")
	t.Setenv("DAZED_KEYWORDS_PRIVATE_FILE", private)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Keywords.Private, []string{"acme", "corp-"}) {
		t.Errorf("private = %v", cfg.Keywords.Private)
	}

	t.Setenv("DAZED_KEYWORDS_IGNORE_FILE", filepath.Join(dir, "missing.txt"))
	if _, err := Load(LoadOptions{}); !dazederrors.Is(err, dazederrors.ErrCodeInvalidConfig) {
		t.Errorf("unreadable ignore list: error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown host", func(c *Config) { c.Host = "bitbucket" }},
		{"zero groups", func(c *Config) { c.Workers.Groups = 0 }},
		{"negative files", func(c *Config) { c.Workers.Files = -1 }},
		{"zero lookups", func(c *Config) { c.Workers.Lookups = 0 }},
		{"negative threshold", func(c *Config) { c.RateLimit.Threshold = -1 }},
		{"no internal keywords", func(c *Config) { c.Keywords.Internal = nil }},
		{"empty internal keyword", func(c *Config) { c.Keywords.Internal = []string{""} }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"bad host url", func(c *Config) { c.GitHub.URL = "ftp://ghe.acme.com" }},
	}

	ok := Default()
	if err := ok.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !dazederrors.Is(err, dazederrors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	cfg := Default()
	if got, _ := cfg.CacheDir(); got != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("CacheDir() = %q", got)
	}
	cfg.Cache.Dir = "/var/cache/dazed"
	if got, _ := cfg.CacheDir(); got != "/var/cache/dazed" {
		t.Errorf("CacheDir() = %q", got)
	}
}
