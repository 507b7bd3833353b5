// Package ratelimit keeps one token bucket per client key. Idle keys are
// forgotten after ttl, and at most size keys are tracked.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type PerKey struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors *expirable.LRU[string, *rate.Limiter]
}

func NewPerKey(limit, burst, size int, ttl time.Duration) *PerKey {
	return &PerKey{
		limit:    rate.Limit(limit),
		burst:    burst,
		visitors: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
	}
}

func (p *PerKey) Allow(key string) bool {
	p.mu.Lock()
	l, ok := p.visitors.Get(key)
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
	}
	// re-adding refreshes the idle deadline
	p.visitors.Add(key, l)
	p.mu.Unlock()

	return l.Allow()
}
