package httpclient

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostPacer spaces consecutive requests to the same host by at least a fixed
// interval (IPTV_REQUEST_INTERVAL).
//
//	if err := pacer.Wait(ctx, rawURL); err != nil { ... }
type HostPacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// NewHostPacer returns a pacer. interval <= 0 disables pacing.
func NewHostPacer(interval time.Duration) *HostPacer {
	return &HostPacer{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Wait blocks until a request to rawURL's host may be sent or ctx is done.
// A nil pacer never blocks.
func (p *HostPacer) Wait(ctx context.Context, rawURL string) error {
	if p == nil || p.interval <= 0 {
		return nil
	}
	return p.limiterFor(rawURL).Wait(ctx)
}

func (p *HostPacer) limiterFor(rawURL string) *rate.Limiter {
	host := rawURL
	// Normalise: strip path/query, keep scheme+host.
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Scheme + "://" + u.Host
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[host] = l
	}
	return l
}
