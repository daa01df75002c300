package scan

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dazed/pkg/observability"
)

// RateGate pauses callers while a host's request budget is low.
//
// Every caller that finds the budget under the threshold sleeps until the
// budget resets plus a small padding. The pause is logged once per episode:
// the first caller to start sleeping warns, callers joining while others
// are still asleep stay silent.
type RateGate struct {
	host      Host
	threshold int
	padding   time.Duration
	logger    *log.Logger

	sleepers atomic.Int32

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateGate returns a gate for host.
func NewRateGate(host Host, threshold int, padding time.Duration, logger *log.Logger) *RateGate {
	if logger == nil {
		logger = log.Default()
	}
	return &RateGate{
		host:      host,
		threshold: threshold,
		padding:   padding,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Wait returns once the host has at least threshold requests left. It
// returns the error of the budget query or the context error if ctx ends
// while sleeping.
func (g *RateGate) Wait(ctx context.Context) error {
	status, err := g.host.RateLimit(ctx)
	if err != nil {
		return err
	}
	if status.Unlimited || status.Remaining >= g.threshold {
		return nil
	}

	d := status.Reset.Sub(g.now())
	if d < 0 {
		d = 0
	}
	d += g.padding

	if g.sleepers.Add(1) == 1 {
		g.logger.Warn("rate limit reached, pausing", "host", g.host.Name(), "remaining", status.Remaining, "sleep", d.Round(time.Second))
		observability.Scan().OnRateLimitPause(ctx, g.host.Name(), d)
	}
	defer g.sleepers.Add(-1)

	return g.sleep(ctx, d)
}

// Sleeping reports whether any caller is currently paused.
func (g *RateGate) Sleeping() bool { return g.sleepers.Load() > 0 }

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
