// Package confirm tracks pending dangerous-action confirmations as an
// explicit state machine: awaiting, then exactly one of confirmed,
// cancelled or expired.
package confirm

import (
	"sync"
	"time"
)

type Outcome int

const (
	Confirmed Outcome = iota
	Cancelled
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "expired"
	}
}

// DefaultTTL is how long a confirmation prompt stays answerable.
const DefaultTTL = 30 * time.Second

type pending struct {
	timer *time.Timer
	fn    func(Outcome)
}

// Manager owns every awaiting confirmation, keyed by token. A token is
// resolved at most once; late button presses on an expired prompt report
// false to the caller.
type Manager struct {
	mu      sync.Mutex
	pending map[string]*pending
}

func NewManager() *Manager {
	return &Manager{pending: make(map[string]*pending)}
}

// Begin registers a confirmation. fn is invoked exactly once, with the
// final outcome, from either Resolve or the expiry timer.
func (m *Manager) Begin(token string, ttl time.Duration, fn func(Outcome)) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	p := &pending{fn: fn}
	p.timer = time.AfterFunc(ttl, func() {
		if m.take(token) != nil {
			fn(Expired)
		}
	})
	m.mu.Lock()
	m.pending[token] = p
	m.mu.Unlock()
}

// Resolve finishes the confirmation. It reports false when the token is
// unknown or already expired.
func (m *Manager) Resolve(token string, confirmed bool) bool {
	p := m.take(token)
	if p == nil {
		return false
	}
	p.timer.Stop()
	if confirmed {
		p.fn(Confirmed)
	} else {
		p.fn(Cancelled)
	}
	return true
}

// Awaiting reports whether the token still has an open prompt.
func (m *Manager) Awaiting(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[token]
	return ok
}

func (m *Manager) take(token string) *pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[token]
	if !ok {
		return nil
	}
	delete(m.pending, token)
	return p
}
