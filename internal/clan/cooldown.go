package clan

import (
	"time"

	"github.com/animesao/clan-bot/internal/store"
)

// LeaveCooldown is how long a user who left a subclan is blocked from
// creating or applying to another one.
const LeaveCooldown = 24 * time.Hour

// CooldownGuard answers whether a user is inside the re-entry window.
type CooldownGuard struct {
	store *store.Store
}

func NewCooldownGuard(st *store.Store) *CooldownGuard {
	return &CooldownGuard{store: st}
}

// Check returns true and the remaining wait if the cooldown is still
// active at now. Stale entries are left in place; the hourly sweep
// removes them.
func (g *CooldownGuard) Check(userID string, now time.Time) (bool, time.Duration) {
	left, ok := g.store.LeaveCooldown(userID)
	if !ok {
		return false, 0
	}
	until := left.Add(LeaveCooldown)
	if now.Before(until) {
		return true, until.Sub(now)
	}
	return false, 0
}

// Start records that the user left a subclan at now.
func (g *CooldownGuard) Start(userID string, now time.Time) error {
	return g.store.Update(func(s *store.State) error {
		s.LeaveCooldowns[userID] = now
		return nil
	})
}

// Sweep drops expired cooldown entries and returns how many were removed.
func (g *CooldownGuard) Sweep(now time.Time) (int, error) {
	removed := 0
	err := g.store.Update(func(s *store.State) error {
		for id, left := range s.LeaveCooldowns {
			if now.Sub(left) >= LeaveCooldown {
				delete(s.LeaveCooldowns, id)
				removed++
			}
		}
		if removed == 0 {
			return store.ErrNoChange
		}
		return nil
	})
	if err == store.ErrNoChange {
		return 0, nil
	}
	return removed, err
}
