// Package ratelimit provides the pacing primitives of the emission engine:
// fixed-schedule deadlines, burst schedules and a write-rate ceiling.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token-bucket ceiling used to protect a destination. Unlike
// Pacer it does not aim for a rate, it only refuses to exceed one.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing perSecond writes per second. A
// non-positive value disables limiting.
func NewRateLimiter(perSecond float64) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(toLimit(perSecond), 1),
	}
}

// Wait blocks until a write is admitted or ctx is done. Safe for
// concurrent use.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Limit returns the current ceiling; zero means unlimited.
func (r *RateLimiter) Limit() float64 {
	if l := r.limiter.Limit(); l != rate.Inf {
		return float64(l)
	}
	return 0
}

func toLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}
