package reminders

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig bounds the outgoing notification rate.
type RateLimiterConfig struct {
	// Rate is the number of notifications allowed per second.
	Rate float64
	// Burst is the maximum burst size.
	Burst int
	// JitterMin/JitterMax add a random delay (milliseconds) before each
	// send so batch processing does not hit the messenger in lockstep.
	JitterMin int
	JitterMax int
}

// DefaultRateLimiterConfig matches the messenger's practical limits.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:      20.0,
		Burst:     30,
		JitterMin: 50,
		JitterMax: 150,
	}
}

// RateLimiter wraps a token bucket with pre-send jitter.
type RateLimiter struct {
	limiter *rate.Limiter
	config  RateLimiterConfig
}

// NewRateLimiter creates a rate limiter from the configuration.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
		config:  config,
	}
}

// Wait blocks for the jitter delay and then for a token, or returns the
// context error on cancellation.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if jitter := r.jitter(); jitter > 0 {
		select {
		case <-time.After(jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.limiter.Wait(ctx)
}

func (r *RateLimiter) jitter() time.Duration {
	if r.config.JitterMax <= r.config.JitterMin {
		return time.Duration(r.config.JitterMin) * time.Millisecond
	}
	ms := r.config.JitterMin + rand.Intn(r.config.JitterMax-r.config.JitterMin)
	return time.Duration(ms) * time.Millisecond
}
