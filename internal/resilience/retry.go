// Package resilience retries outbound operations with exponential backoff.
// It backs the outreach mailer; scraping never retries.
package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryConfig is a delivery retry schedule. The wait before retry n is
// InitialBackoff doubled n-1 times, capped at MaxBackoff.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// OnRetry runs before each wait with the failed attempt number.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the mail delivery policy: three attempts,
// waiting 1s then 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = def.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = def.MaxBackoff
	}
	return c
}

// wait returns the pause after failed attempt n (1-based).
func (c RetryConfig) wait(n int) time.Duration {
	d := c.InitialBackoff
	for i := 1; i < n && d < c.MaxBackoff; i++ {
		d *= 2
	}
	return min(d, c.MaxBackoff)
}

// Do calls fn until it succeeds, fails permanently, or runs out of attempts,
// and returns the last error. Cancelling ctx ends the wait between attempts.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg = cfg.normalized()

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil, IsPermanent(err), attempt >= cfg.MaxAttempts:
			return err
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		t := time.NewTimer(cfg.wait(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}

// RetryLogger returns an OnRetry hook that logs the failed attempt.
func RetryLogger(operation, target string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("resilience: attempt failed, retrying",
			zap.String("operation", operation),
			zap.String("target", target),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
