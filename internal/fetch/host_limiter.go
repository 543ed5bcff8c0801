package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// defaultHostQPS bounds how fast we hit one origin. A batch refresh fans
// out across feeds, and several feeds of one owner often share a host.
const defaultHostQPS = 8

// hostLimiter keeps one token bucket per remote host.
type hostLimiter struct {
	qps      int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostLimiter(qps int) *hostLimiter {
	if qps <= 0 {
		qps = defaultHostQPS
	}
	return &hostLimiter{qps: qps, limiters: make(map[string]*rate.Limiter)}
}

func (h *hostLimiter) wait(ctx context.Context, host string) error {
	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.qps), h.qps)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()
	return limiter.Wait(ctx)
}
