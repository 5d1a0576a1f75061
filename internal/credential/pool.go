// Package credential manages a rotating pool of provider API tokens with
// per-key daily quotas and exhaustion tracking.
package credential

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Credential is one provider token. It is owned by the Pool for the
// process lifetime; callers hold it only long enough to make a request.
type Credential struct {
	Token     string
	UsedToday int
	Exhausted bool
}

// Pool rotates credentials round-robin, skipping any that are exhausted
// or at their daily cap. Usage counters and exhaustion flags reset lazily
// on the first Acquire after a calendar-day rollover.
type Pool struct {
	mu       sync.Mutex
	creds    []*Credential
	next     int
	dailyCap int
	lastDay  time.Time
	now      func() time.Time
}

// DefaultDailyCap bounds per-key acquisitions per calendar day.
const DefaultDailyCap = 100

// NewPool builds a pool from an ordered list of tokens. A dailyCap <= 0
// falls back to DefaultDailyCap.
func NewPool(tokens []string, dailyCap int) *Pool {
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}
	p := &Pool{
		dailyCap: dailyCap,
		now:      time.Now,
	}
	for _, t := range tokens {
		p.creds = append(p.creds, &Credential{Token: t})
	}
	p.lastDay = p.now()
	return p
}

// Acquire returns the next usable credential, or nil if every key is
// exhausted or at cap. The rotation pointer advances on every call, so
// long-run selection stays fair regardless of outcome. A nil return is a
// degrade signal for the caller, not an error.
func (p *Pool) Acquire() *Credential {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetIfNewDay()

	for range p.creds {
		c := p.creds[p.next]
		p.next = (p.next + 1) % len(p.creds)

		if c.Exhausted || c.UsedToday >= p.dailyCap {
			continue
		}
		c.UsedToday++
		return c
	}
	zap.L().Debug("credential pool drained", zap.Int("size", len(p.creds)))
	return nil
}

// MarkExhausted flags a credential unusable until the next daily reset.
// Used on rate-limit and auth failures.
func (p *Pool) MarkExhausted(c *Credential) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c.Exhausted = true
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// Available counts credentials that could still be acquired today.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetIfNewDay()
	n := 0
	for _, c := range p.creds {
		if !c.Exhausted && c.UsedToday < p.dailyCap {
			n++
		}
	}
	return n
}

// resetIfNewDay clears usage and exhaustion once per calendar rollover.
// Caller must hold p.mu.
func (p *Pool) resetIfNewDay() {
	now := p.now()
	if sameDay(now, p.lastDay) {
		return
	}
	for _, c := range p.creds {
		c.UsedToday = 0
		c.Exhausted = false
	}
	p.lastDay = now
	zap.L().Info("credential pool daily reset", zap.Int("size", len(p.creds)))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
