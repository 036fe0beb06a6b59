// Package ratelimiter throttles outbound requests to the remote object store.
//
// Every hydration miss turns into a remote round-trip; a client scanning a
// large projected tree can otherwise flood the store with listings and range
// fetches. The limiter sits at the remote client boundary and bounds the
// sustained request rate while still allowing short bursts.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides request rate limiting using the token bucket algorithm.
//
// This wraps golang.org/x/time/rate to provide:
//   - Token bucket rate limiting (allows bursts while enforcing sustained rate)
//   - Context-aware waiting (respects cancellation)
//   - Thread-safe operation
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a new RateLimiter with the specified rate and burst capacity.
//
// Parameters:
//   - requestsPerSecond: Maximum sustained rate (tokens added per second)
//   - burst: Maximum burst size (bucket capacity in tokens)
//
// Special cases:
//   - requestsPerSecond = 0: No rate limiting (unlimited)
//
// Returns a configured RateLimiter.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		// Unlimited rate: use a very high limit
		// rate.Inf would be ideal but has edge cases, so use a large value
		requestsPerSecond = 1_000_000_000
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow checks if a request is allowed under the current rate limit.
//
// This is the fast path - it returns immediately without waiting. Returns
// true if a token was consumed, false if the request should be rejected.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
//
// The hydration engine calls this before every remote round-trip so that a
// cancelled filesystem callback stops waiting instead of holding a worker.
//
// Returns nil if a token was acquired, or the context error if the context
// was cancelled before one became available.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// AllowN checks if N requests are allowed under the current rate limit.
//
// Useful for batch operations that consume multiple tokens at once. Returns
// false without consuming tokens if fewer than N are available.
func (r *RateLimiter) AllowN(n uint) bool {
	return r.limiter.AllowN(time.Now(), int(n))
}

// SetLimit updates the rate limit to a new value.
//
// This allows dynamic rate limit adjustments without creating a new limiter.
// The burst size is adjusted to match the new rate if it was previously at or
// below the old rate, or at the default ratio (2x old rate).
func (r *RateLimiter) SetLimit(requestsPerSecond uint) {
	if requestsPerSecond == 0 {
		requestsPerSecond = 1_000_000_000
	}

	oldRate := uint(r.limiter.Limit())
	oldBurst := uint(r.limiter.Burst())
	r.limiter.SetLimit(rate.Limit(requestsPerSecond))

	if oldBurst == oldRate*2 || oldBurst <= oldRate {
		r.limiter.SetBurst(int(requestsPerSecond * 2))
	}
}

// SetBurst updates the burst size to a new value.
func (r *RateLimiter) SetBurst(burst uint) {
	r.limiter.SetBurst(int(burst))
}

// Tokens returns the current number of available tokens.
//
// Primarily useful for monitoring and debugging; the value may change
// immediately after this call.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
