package wikiapi

import (
	"context"
	"sync"
	"time"
)

// Default adaptive rate limiter settings, tuned for the Wikimedia APIs.
const (
	// DefaultInitialDelay is the starting inter-request delay.
	DefaultInitialDelay = 30 * time.Millisecond

	// DefaultMinDelay is the floor the delay decays toward on success.
	DefaultMinDelay = 20 * time.Millisecond

	// DefaultMaxDelay is the ceiling the delay grows toward on throttling.
	DefaultMaxDelay = 1 * time.Second

	// DefaultBackoffFactor multiplies the delay after a throttled response.
	DefaultBackoffFactor = 2.0

	// DefaultRecoveryFactor multiplies the delay after a successful response.
	DefaultRecoveryFactor = 0.95
)

// RateConfig holds explicit adaptive rate limiter settings. The limiter is
// owned by the client that uses it; there is no package-level limiter state.
type RateConfig struct {
	// Initial is the starting inter-request delay.
	Initial time.Duration

	// Min bounds the delay from below.
	Min time.Duration

	// Max bounds the delay from above.
	Max time.Duration

	// Backoff is the multiplier applied after a throttled response (> 1).
	Backoff float64

	// Recovery is the multiplier applied after a success (0 < Recovery <= 1).
	Recovery float64
}

// DefaultRateConfig returns a RateConfig with sensible defaults.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		Initial:  DefaultInitialDelay,
		Min:      DefaultMinDelay,
		Max:      DefaultMaxDelay,
		Backoff:  DefaultBackoffFactor,
		Recovery: DefaultRecoveryFactor,
	}
}

// AdaptiveLimiter throttles requests with a delay that backs off on
// throttled responses and decays toward the configured floor on success.
// Safe for concurrent use.
type AdaptiveLimiter struct {
	mu     sync.Mutex
	delay  time.Duration
	config RateConfig
}

// NewAdaptiveLimiter creates a limiter from the given configuration.
// Zero-valued fields fall back to defaults.
func NewAdaptiveLimiter(config RateConfig) *AdaptiveLimiter {
	defaults := DefaultRateConfig()
	if config.Initial <= 0 {
		config.Initial = defaults.Initial
	}
	if config.Min <= 0 {
		config.Min = defaults.Min
	}
	if config.Max <= 0 {
		config.Max = defaults.Max
	}
	if config.Backoff <= 1 {
		config.Backoff = defaults.Backoff
	}
	if config.Recovery <= 0 || config.Recovery > 1 {
		config.Recovery = defaults.Recovery
	}

	return &AdaptiveLimiter{
		delay:  clampDelay(config.Initial, config.Min, config.Max),
		config: config,
	}
}

// Wait blocks for the current delay or until the context is cancelled.
func (limiter *AdaptiveLimiter) Wait(ctx context.Context) error {
	timer := time.NewTimer(limiter.Delay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Success decays the delay toward the configured minimum.
func (limiter *AdaptiveLimiter) Success() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	limiter.delay = clampDelay(
		time.Duration(float64(limiter.delay)*limiter.config.Recovery),
		limiter.config.Min, limiter.config.Max,
	)
}

// Throttled backs the delay off toward the configured maximum.
func (limiter *AdaptiveLimiter) Throttled() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	limiter.delay = clampDelay(
		time.Duration(float64(limiter.delay)*limiter.config.Backoff),
		limiter.config.Min, limiter.config.Max,
	)
}

// Delay returns the current inter-request delay.
func (limiter *AdaptiveLimiter) Delay() time.Duration {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return limiter.delay
}

// clampDelay bounds delay to [min, max].
func clampDelay(delay, min, max time.Duration) time.Duration {
	if delay < min {
		return min
	}
	if delay > max {
		return max
	}
	return delay
}
