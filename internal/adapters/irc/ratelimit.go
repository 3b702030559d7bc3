package irc

import (
	"context"
	"sync"
	"time"
)

// FloodConfig holds outbound flood control settings. Servers disconnect
// clients that send lines faster than they allow.
type FloodConfig struct {
	Enabled        bool `yaml:"enabled"`
	LinesPerMinute int  `yaml:"lines_per_minute"` // sustained rate (default: 30)
	BurstSize      int  `yaml:"burst_size"`       // lines sent without waiting (default: 5)
}

// DefaultFloodConfig returns default flood control configuration
func DefaultFloodConfig() *FloodConfig {
	return &FloodConfig{
		Enabled:        true,
		LinesPerMinute: 30,
		BurstSize:      5,
	}
}

// rateLimiter is a token bucket for outbound PRIVMSG lines.
type rateLimiter struct {
	enabled  bool
	rate     float64 // tokens per second
	maxBurst float64

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

func newRateLimiter(cfg *FloodConfig) *rateLimiter {
	if cfg == nil {
		cfg = DefaultFloodConfig()
	}
	def := DefaultFloodConfig()
	perMinute := cfg.LinesPerMinute
	if perMinute <= 0 {
		perMinute = def.LinesPerMinute
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = def.BurstSize
	}

	return &rateLimiter{
		enabled:    cfg.Enabled,
		rate:       float64(perMinute) / 60.0,
		maxBurst:   float64(burst),
		tokens:     float64(burst), // Start with burst capacity
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// reserve takes a token and returns how long the caller must wait before
// sending. The token is owed even if the caller gives up waiting.
func (r *rateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.rate
	if r.tokens > r.maxBurst {
		r.tokens = r.maxBurst
	}
	r.lastRefill = now

	r.tokens--
	if r.tokens >= 0 {
		return 0
	}
	return time.Duration(-r.tokens / r.rate * float64(time.Second))
}

// Wait blocks until a line may be sent or ctx is done.
func (r *rateLimiter) Wait(ctx context.Context) error {
	if r == nil || !r.enabled {
		return nil
	}
	d := r.reserve()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
