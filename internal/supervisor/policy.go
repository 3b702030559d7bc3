package supervisor

import (
	"fmt"
	"time"
)

// Backoff names a reconnect policy.
type Backoff string

const (
	// BackoffNone reconnects immediately after a lost connection. Failed
	// connection attempts are retried every Initial.
	BackoffNone Backoff = "none"
	// BackoffExponential waits Initial after a lost connection and doubles the
	// wait on every consecutive failed attempt, up to Max.
	BackoffExponential Backoff = "exponential"
)

// Default policy durations.
const (
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
	backoffFactor         = 2
)

// Policy controls how the supervisor waits between connection attempts.
type Policy struct {
	Backoff Backoff       `yaml:"policy"`
	Initial time.Duration `yaml:"initial"`
	Max     time.Duration `yaml:"max"`
}

// DefaultPolicy reconnects immediately, like the bot always has.
func DefaultPolicy() *Policy {
	return &Policy{
		Backoff: BackoffNone,
		Initial: defaultInitialBackoff,
		Max:     defaultMaxBackoff,
	}
}

// Validate checks the policy name and durations.
func (p *Policy) Validate() error {
	switch p.Backoff {
	case "", BackoffNone, BackoffExponential:
	default:
		return fmt.Errorf("unknown reconnect policy %q", p.Backoff)
	}
	if p.Initial < 0 || p.Max < 0 {
		return fmt.Errorf("reconnect durations must not be negative")
	}
	if p.Initial > 0 && p.Max > 0 && p.Max < p.Initial {
		return fmt.Errorf("reconnect max %s is below initial %s", p.Max, p.Initial)
	}
	return nil
}

func (p *Policy) withDefaults() *Policy {
	out := *p
	if out.Backoff == "" {
		out.Backoff = BackoffNone
	}
	if out.Initial <= 0 {
		out.Initial = defaultInitialBackoff
	}
	if out.Max <= 0 {
		out.Max = defaultMaxBackoff
	}
	if out.Max < out.Initial {
		out.Max = out.Initial
	}
	return &out
}

// lostDelay is the wait after an established connection was lost.
func (p *Policy) lostDelay() time.Duration {
	if p.Backoff == BackoffExponential {
		return p.Initial
	}
	return 0
}

// dialDelay is the wait after the n-th consecutive failed attempt.
func (p *Policy) dialDelay(n int) time.Duration {
	if p.Backoff != BackoffExponential || n <= 1 {
		return p.Initial
	}
	d := p.Initial
	for i := 1; i < n; i++ {
		d *= backoffFactor
		if d >= p.Max {
			return p.Max
		}
	}
	return d
}
