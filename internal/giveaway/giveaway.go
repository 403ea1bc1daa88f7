// Package giveaway runs timed giveaways: duration parsing, due-time
// sweeping and winner sampling.
package giveaway

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/animesao/clan-bot/internal/store"
)

// MinDuration is the shortest giveaway the bot will run.
const MinDuration = time.Minute

var (
	ErrBadDuration  = errors.New("unparseable duration")
	ErrTooShort     = errors.New("giveaway duration below the minimum")
	ErrNotFound     = errors.New("giveaway not found")
	ErrAlreadyEnded = errors.New("giveaway already ended")
)

var durationPart = regexp.MustCompile(`(\d+)\s*([дdчhмm])`)

// ParseDuration understands compact Russian or Latin unit suffixes, for
// example "1д 12ч 30м" or "2h45m".
func ParseDuration(s string) (time.Duration, error) {
	matches := durationPart.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) == 0 {
		return 0, ErrBadDuration
	}
	var d time.Duration
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, ErrBadDuration
		}
		switch m[2] {
		case "д", "d":
			d += time.Duration(n) * 24 * time.Hour
		case "ч", "h":
			d += time.Duration(n) * time.Hour
		case "м", "m":
			d += time.Duration(n) * time.Minute
		}
	}
	if d < MinDuration {
		return 0, ErrTooShort
	}
	return d, nil
}

// FormatDuration renders a duration the way users entered it.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dд", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dч", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dм", minutes))
	}
	return strings.Join(parts, " ")
}

// Manager persists giveaways keyed by their announcement message id and
// picks winners. The random source is injectable for tests.
type Manager struct {
	store *store.Store
	rng   *rand.Rand
}

func NewManager(st *store.Store, src rand.Source) *Manager {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Manager{store: st, rng: rand.New(src)}
}

func (m *Manager) Create(messageID string, g store.Giveaway) error {
	return m.store.Update(func(s *store.State) error {
		s.Giveaways[messageID] = &g
		return nil
	})
}

func (m *Manager) Get(messageID string) (store.Giveaway, bool) {
	var g store.Giveaway
	var ok bool
	m.store.View(func(s *store.State) {
		var rec *store.Giveaway
		if rec, ok = s.Giveaways[messageID]; ok {
			g = *rec
		}
	})
	return g, ok
}

// Due returns every running giveaway whose end time has passed.
func (m *Manager) Due(now time.Time) map[string]store.Giveaway {
	due := make(map[string]store.Giveaway)
	m.store.View(func(s *store.State) {
		for id, g := range s.Giveaways {
			if !g.Ended && !now.Before(g.EndTime) {
				due[id] = *g
			}
		}
	})
	return due
}

// MarkEnded flips the giveaway to ended. It is test-and-set: the caller
// that gets nil owns the draw, every other caller gets ErrAlreadyEnded,
// so the sweep and a manual end can never both pick winners.
func (m *Manager) MarkEnded(messageID string) error {
	return m.store.Update(func(s *store.State) error {
		g, ok := s.Giveaways[messageID]
		if !ok {
			return ErrNotFound
		}
		if g.Ended {
			return ErrAlreadyEnded
		}
		g.Ended = true
		return nil
	})
}

// Cancel removes a giveaway that is still running.
func (m *Manager) Cancel(messageID string) error {
	return m.store.Update(func(s *store.State) error {
		if _, ok := s.Giveaways[messageID]; !ok {
			return ErrNotFound
		}
		delete(s.Giveaways, messageID)
		return nil
	})
}

// PickWinners samples up to n distinct entrants. Fewer entrants than
// winners means everybody wins.
func (m *Manager) PickWinners(entrants []string, n int) []string {
	if n <= 0 || len(entrants) == 0 {
		return nil
	}
	pool := append([]string(nil), entrants...)
	m.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}
