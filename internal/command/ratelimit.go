// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/pluginkit/internal/clock"
)

// Default rate limiting values.
const (
	// DefaultBurstCapacity is the maximum number of commands a subject can
	// execute in a burst before rate limiting kicks in.
	DefaultBurstCapacity = 10

	// DefaultSustainedRate is the number of commands per second allowed as
	// sustained rate (token refill rate).
	DefaultSustainedRate = 2.0

	// MinBurstCapacity ensures burst capacity is at least 1.
	MinBurstCapacity = 1

	// MinSustainedRate ensures sustained rate is at least 0.1 tokens/second.
	MinSustainedRate = 0.1

	// PermissionRateLimitBypass exempts a sender from rate limiting.
	PermissionRateLimitBypass = "pluginkit.ratelimit.bypass"

	// DefaultCleanupInterval is the interval at which the background goroutine
	// runs to clean up idle subjects.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultIdleTimeout is how long a subject may go unseen before its
	// bucket is dropped.
	DefaultIdleTimeout = time.Hour
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// BurstCapacity is the maximum number of commands allowed in a burst.
	// Defaults to DefaultBurstCapacity (10) if zero or negative.
	BurstCapacity int

	// SustainedRate is the number of commands per second allowed as sustained rate.
	// Defaults to DefaultSustainedRate (2.0) if zero or negative.
	SustainedRate float64

	// CleanupInterval is the interval at which background cleanup runs.
	// Defaults to DefaultCleanupInterval (5 minutes) if zero.
	CleanupInterval time.Duration

	// IdleTimeout is how long a subject may go unseen before cleanup drops it.
	// Defaults to DefaultIdleTimeout (1 hour) if zero.
	IdleTimeout time.Duration

	// Clock supplies time. Defaults to clock.Real().
	Clock clock.Clock
}

// bucket tracks rate limiting state for a single subject using the token
// bucket algorithm.
type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter implements per-subject rate limiting using a token bucket algorithm.
// It is safe for concurrent use.
//
// The RateLimiter runs a background goroutine to periodically clean up stale
// subjects. Call Close() to stop the goroutine and release resources.
type RateLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	burstCapacity int
	sustainedRate float64 // tokens per second
	idleTimeout   time.Duration
	clock         clock.Clock

	// Background cleanup
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Metrics gauge for tracked subjects (nil if no registry provided)
	subjectGauge prometheus.Gauge
}

// NewRateLimiter creates a new rate limiter with the given configuration.
// It starts a background goroutine for cleanup. Call Close() to stop it.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return newRateLimiter(cfg, nil)
}

// NewRateLimiterWithRegistry creates a new rate limiter and registers a
// tracked-subject gauge with the provided Prometheus registry.
// It starts a background goroutine for cleanup. Call Close() to stop it.
func NewRateLimiterWithRegistry(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	return newRateLimiter(cfg, reg)
}

func newRateLimiter(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		// Use default when not specified
		burstCapacity = DefaultBurstCapacity
	}
	// Ensure minimum burst capacity
	if burstCapacity < MinBurstCapacity {
		burstCapacity = MinBurstCapacity
	}

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		// Use default when not specified
		sustainedRate = DefaultSustainedRate
	}
	// Ensure minimum sustained rate
	if sustainedRate < MinSustainedRate {
		sustainedRate = MinSustainedRate
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	rl := &RateLimiter{
		buckets:       make(map[string]*bucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		idleTimeout:   idleTimeout,
		clock:         clk,
		stopChan:      make(chan struct{}),
	}

	if reg != nil {
		rl.subjectGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pluginkit_ratelimiter_subjects",
			Help: "Current number of subjects tracked by the command rate limiter",
		})
		reg.MustRegister(rl.subjectGauge)
	}

	// Ticker is created before the goroutine starts so a fake clock sees it
	// registered by the time the constructor returns.
	ticker := clk.NewTicker(cleanupInterval)
	rl.wg.Add(1)
	go rl.cleanupLoop(ticker)

	return rl
}

// Allow checks if a command is allowed for the given subject.
// Returns (allowed, cooldownMs) where:
//   - allowed: true if the command should be executed
//   - cooldownMs: milliseconds until the next token is available (0 if allowed)
//
// Each call to Allow consumes one token if available. Tokens refill at the
// sustained rate, up to the burst capacity.
func (rl *RateLimiter) Allow(subject string) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	b, exists := rl.buckets[subject]
	if !exists {
		// New subject starts with full bucket
		b = &bucket{
			tokens:    float64(rl.burstCapacity),
			lastCheck: now,
		}
		rl.buckets[subject] = b
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastCheck).Seconds()
	b.tokens += elapsed * rl.sustainedRate
	if b.tokens > float64(rl.burstCapacity) {
		b.tokens = float64(rl.burstCapacity)
	}
	b.lastCheck = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	// Calculate cooldown until next token
	deficit := 1.0 - b.tokens
	cooldownSeconds := deficit / rl.sustainedRate
	cooldownMs = int64(cooldownSeconds * 1000)

	return false, cooldownMs
}

// SubjectCount returns the number of tracked subjects.
func (rl *RateLimiter) SubjectCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Cleanup removes subjects that haven't been seen since maxAge ago.
// This is called automatically by the background goroutine, but can also
// be called manually if immediate cleanup is desired.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.clock.Now().Add(-maxAge)
	for subject, b := range rl.buckets {
		if b.lastCheck.Before(threshold) {
			delete(rl.buckets, subject)
		}
	}

	if rl.subjectGauge != nil {
		rl.subjectGauge.Set(float64(len(rl.buckets)))
	}
}

// cleanupLoop runs periodic cleanup in the background.
func (rl *RateLimiter) cleanupLoop(ticker *clock.Ticker) {
	defer rl.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.Cleanup(rl.idleTimeout)
		}
	}
}

// Close stops the background cleanup goroutine and releases resources.
// It blocks until the goroutine has stopped.
func (rl *RateLimiter) Close() {
	close(rl.stopChan)
	rl.wg.Wait()
}
