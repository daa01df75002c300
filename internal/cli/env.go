package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/dazed/internal/config"
	"github.com/matzehuels/dazed/pkg/cache"
	"github.com/matzehuels/dazed/pkg/deps"
	"github.com/matzehuels/dazed/pkg/deps/ecosystems"
	"github.com/matzehuels/dazed/pkg/integrations/github"
	"github.com/matzehuels/dazed/pkg/integrations/gitlab"
	"github.com/matzehuels/dazed/pkg/scan"
)

// redisPrefix namespaces dazed keys in a shared Redis instance.
const redisPrefix = appName + ":"

// environment is everything a scan command needs, built from config.
type environment struct {
	cfg     *config.Config
	cache   cache.Cache
	scanner *scan.Scanner
}

// newEnvironment wires the cache, ecosystem table, classifier and host
// described by cfg.
func (c *CLI) newEnvironment(ctx context.Context, cfg *config.Config) (*environment, error) {
	backend, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	table, err := ecosystems.Default(backend, cfg.Cache.TTL)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	classifier := deps.NewClassifier(deps.NewLookupCache(backend, cfg.Cache.TTL), cfg.Keywords.Ignore, cfg.Keywords.Private)
	classifier.Workers = cfg.Workers.Lookups

	s := scan.New(newHost(cfg), table, classifier, scan.Options{
		Groups:             cfg.Workers.Groups,
		RepoWorkers:        cfg.Workers.Repositories,
		FileWorkers:        cfg.Workers.Files,
		RateLimitThreshold: cfg.RateLimit.Threshold,
		RateLimitPadding:   cfg.RateLimit.Padding,
		Parse:              deps.ParseOptions{InternalKeywords: cfg.Keywords.Internal},
		Logger:             c.Logger,
	})
	return &environment{cfg: cfg, cache: backend, scanner: s}, nil
}

func (e *environment) Close() error {
	return e.cache.Close()
}

func newHost(cfg *config.Config) scan.Host {
	auth := cfg.HostAuth()
	if cfg.Host == config.HostGitLab {
		return gitlab.NewHost(auth.URL, auth.Token)
	}
	return github.NewHost(auth.URL, auth.Token)
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, redisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		return c, nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
