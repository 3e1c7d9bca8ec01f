package generate

import "time"

// RetryConfig tunes the bounded retry loop around generation attempts.
// The contract across kinds: overload backs off fastest and shortest,
// quota waits longest, everything else gets a fixed middle ground.
type RetryConfig struct {
	MaxAttempts    int
	OverloadBase   time.Duration // doubled per attempt, capped
	OverloadCap    time.Duration
	QuotaDelay     time.Duration
	TransientDelay time.Duration
}

// DefaultRetryConfig returns the tuning used in production.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		OverloadBase:   2 * time.Second,
		OverloadCap:    16 * time.Second,
		QuotaDelay:     30 * time.Second,
		TransientDelay: 6 * time.Second,
	}
}

// delay returns the backoff before the next attempt, given the classified
// kind of the failure on 1-based attempt.
func (c RetryConfig) delay(kind ErrorKind, attempt int) time.Duration {
	switch kind {
	case KindOverload:
		d := c.OverloadBase
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= c.OverloadCap {
				return c.OverloadCap
			}
		}
		return d
	case KindQuota:
		return c.QuotaDelay
	default:
		return c.TransientDelay
	}
}
