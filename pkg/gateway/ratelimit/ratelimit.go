// Package ratelimit provides single-process, per-client request limits:
// a token bucket for request rate plus a concurrency cap.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

type Config struct {
	RPS   float64
	Burst int

	MaxConcurrentRequests int

	// Operational bounds for the in-memory map (single-process only).
	MaxEntries int
	EntryTTL   time.Duration
}

type Limiter struct {
	cfg Config

	mu sync.Mutex
	m  map[string]*clientLimiter
}

type clientLimiter struct {
	mu sync.Mutex

	tb tokenBucket

	reqSem chan struct{}

	lastSeen time.Time
}

type tokenBucket struct {
	rps      float64
	capacity float64

	tokens float64
	last   time.Time
}

func New(cfg Config) *Limiter {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10_000
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 30 * time.Minute
	}
	return &Limiter{
		cfg: cfg,
		m:   make(map[string]*clientLimiter),
	}
}

type Permit struct {
	release func()
}

func (p *Permit) Release() {
	if p == nil || p.release == nil {
		return
	}
	p.release()
	p.release = nil
}

type Decision struct {
	Allowed    bool
	RetryAfter int
	Permit     *Permit
}

func (l *Limiter) AcquireRequest(client string, now time.Time) Decision {
	if client == "" {
		client = "anonymous"
	}

	cl := l.getOrCreate(client, now)
	cl.touch(now)

	// RPS/burst (token bucket).
	if l.cfg.RPS > 0 && l.cfg.Burst > 0 {
		ok, retryAfter := cl.allowToken(now, l.cfg.RPS, l.cfg.Burst)
		if !ok {
			return Decision{Allowed: false, RetryAfter: retryAfter}
		}
	}

	// Concurrency cap.
	if l.cfg.MaxConcurrentRequests > 0 {
		select {
		case cl.reqSem <- struct{}{}:
			return Decision{
				Allowed: true,
				Permit:  &Permit{release: func() { <-cl.reqSem }},
			}
		default:
			return Decision{Allowed: false, RetryAfter: 1}
		}
	}

	return Decision{Allowed: true, Permit: &Permit{release: func() {}}}
}

func (l *Limiter) getOrCreate(client string, now time.Time) *clientLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.m) >= l.cfg.MaxEntries {
		l.gcLocked(now)
		// If still too big, drop one arbitrary entry (bounded memory > perfect fairness).
		if len(l.m) >= l.cfg.MaxEntries {
			for k := range l.m {
				delete(l.m, k)
				break
			}
		}
	}

	if cl, ok := l.m[client]; ok {
		return cl
	}
	cl := &clientLimiter{
		reqSem:   make(chan struct{}, max(1, l.cfg.MaxConcurrentRequests)),
		lastSeen: now,
	}
	l.m[client] = cl
	return cl
}

func (l *Limiter) gcLocked(now time.Time) {
	ttl := l.cfg.EntryTTL
	for k, v := range l.m {
		if now.Sub(v.lastSeen) > ttl {
			delete(l.m, k)
		}
	}
}

func (cl *clientLimiter) touch(now time.Time) {
	cl.lastSeen = now
}

func (cl *clientLimiter) allowToken(now time.Time, rps float64, burst int) (bool, int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if burst <= 0 || rps <= 0 {
		return true, 0
	}
	capacity := float64(burst)
	if cl.tb.capacity == 0 {
		cl.tb = tokenBucket{
			rps:      rps,
			capacity: capacity,
			tokens:   capacity,
			last:     now,
		}
	}

	// If config changes at runtime (rare), adapt.
	cl.tb.rps = rps
	cl.tb.capacity = capacity

	elapsed := now.Sub(cl.tb.last).Seconds()
	if elapsed > 0 {
		cl.tb.tokens = math.Min(cl.tb.capacity, cl.tb.tokens+(elapsed*cl.tb.rps))
		cl.tb.last = now
	}

	if cl.tb.tokens >= 1.0 {
		cl.tb.tokens -= 1.0
		return true, 0
	}

	needed := 1.0 - cl.tb.tokens
	seconds := needed / cl.tb.rps
	retryAfter := int(math.Ceil(seconds))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}
