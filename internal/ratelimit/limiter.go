package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter
type Limiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	mu         sync.Mutex
	lastRefill time.Time
}

// NewLimiter creates a new token bucket rate limiter
// maxTokens: maximum number of tokens in the bucket
// refillRate: how often to add one token to the bucket
func NewLimiter(maxTokens int, refillRate time.Duration) *Limiter {
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed immediately
// Returns true if a token is available and consumed
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillTokens()

	if l.tokens > 0 {
		l.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (l *Limiter) Wait() {
	for !l.Allow() {
		time.Sleep(l.refillRate / time.Duration(l.maxTokens))
	}
}

// WaitWithTimeout waits for a token with a timeout
// Returns true if token was acquired, false if timeout exceeded
func (l *Limiter) WaitWithTimeout(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if l.Allow() {
			return true
		}

		sleepTime := l.refillRate / time.Duration(l.maxTokens)
		if sleepTime > time.Until(deadline) {
			sleepTime = time.Until(deadline)
		}
		if sleepTime > 0 {
			time.Sleep(sleepTime)
		}
	}

	return false
}

// TokensAvailable returns the current number of tokens available
func (l *Limiter) TokensAvailable() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillTokens()
	return l.tokens
}

// refillTokens adds tokens based on elapsed time
// Must be called with mutex held
func (l *Limiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)

	tokensToAdd := int(elapsed / l.refillRate)

	if tokensToAdd > 0 {
		l.tokens = min(l.maxTokens, l.tokens+tokensToAdd)
		l.lastRefill = now
	}
}

// ForSource returns a limiter tuned for a marketplace. The flagship
// retail sites have the most aggressive anti-bot posture, so they get
// the slowest drip; a single aggregation request already fans out, so
// bursts stay small everywhere.
func ForSource(source string) *Limiter {
	switch source {
	case "Amazon", "Flipkart":
		return NewLimiter(2, 2*time.Second)
	case "IndiaMART", "TradeIndia", "ExportersIndia":
		return NewLimiter(2, 3*time.Second)
	default:
		return NewLimiter(3, time.Second)
	}
}
