package cli

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dazed/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Scanned acme (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// scanStats counts scan events for the summary and logs them at debug
// level. It is installed as the process-wide scan and cache hooks.
type scanStats struct {
	observability.NoopScanHooks
	observability.NoopCacheHooks

	logger *log.Logger

	repos        atomic.Int64
	lookups      atomic.Int64
	lookupErrors atomic.Int64
	cacheHits    atomic.Int64
	pauses       atomic.Int64
}

func newScanStats(l *log.Logger) *scanStats {
	return &scanStats{logger: l}
}

// install registers s with the observability package.
func (s *scanStats) install() {
	observability.SetScanHooks(s)
	observability.SetCacheHooks(s)
}

func (s *scanStats) OnRepositoryComplete(_ context.Context, org, repo string, files int, d time.Duration, err error) {
	s.repos.Add(1)
	s.logger.Debug("repository scanned", "org", org, "repo", repo, "files", files, "took", d.Round(time.Millisecond), "err", err)
}

func (s *scanStats) OnLookup(_ context.Context, checker, name string, found bool, d time.Duration, err error) {
	s.lookups.Add(1)
	if err != nil {
		s.lookupErrors.Add(1)
	}
	s.logger.Debug("lookup", "registry", checker, "name", name, "found", found, "took", d.Round(time.Millisecond), "err", err)
}

func (s *scanStats) OnRateLimitPause(context.Context, string, time.Duration) {
	s.pauses.Add(1)
}

func (s *scanStats) OnCacheHit(context.Context, string) {
	s.cacheHits.Add(1)
}
