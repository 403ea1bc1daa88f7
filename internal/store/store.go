package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// ErrNoChange may be returned by an Update closure that turned out to
// mutate nothing; the store skips the disk write and passes it through.
var ErrNoChange = errors.New("store: no change")

// Store is the single authoritative holder of clan state. Every mutation
// goes through Update, which holds the lock for the whole read-modify-write
// and persists the document before returning.
type Store struct {
	mu     sync.Mutex
	state  *State
	path   string
	backup string
}

// Open loads the state document at path, falling back to the backup copy
// when the main file is corrupt. A missing file starts fresh; two corrupt
// files are an error the operator has to look at.
func Open(path, backup string) (*Store, error) {
	s := &Store{path: path, backup: backup}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	state, err := readState(path)
	switch {
	case err == nil:
		s.state = state
	case errors.Is(err, os.ErrNotExist):
		s.state = DefaultState()
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	default:
		state, berr := readState(backup)
		if berr != nil {
			return nil, fmt.Errorf("state file unreadable (%v) and backup unreadable (%v)", err, berr)
		}
		s.state = state
	}

	s.state.normalize()
	return s, nil
}

func readState(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state := DefaultState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("malformed state file %s: %v", path, err)
	}
	return state, nil
}

// Save writes the whole document: backup first, then the main file through
// a temp-file rename so a crash mid-write cannot truncate it.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	raw, err := json.MarshalIndent(s.state, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %v", err)
	}

	if s.backup != "" {
		if err := os.WriteFile(s.backup, raw, 0644); err != nil {
			return fmt.Errorf("failed to write backup: %v", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write state: %v", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %v", err)
	}
	return nil
}

// View runs fn with read access to the state. fn must not retain references
// past the call.
func (s *Store) View(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Update runs fn under the lock and persists the document when fn succeeds.
// An error from fn leaves the file untouched; in-memory changes made before
// the error are the caller's responsibility to avoid.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.state); err != nil {
		return err
	}
	return s.saveLocked()
}

func (s *Store) Member(userID string) (Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.state.Members[userID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

func (s *Store) Application(userID string) (Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.Applications[userID]
	if !ok {
		return Application{}, false
	}
	return *a, true
}

// Subclan returns a deep copy; mutations must go through Update. The copy
// shares nothing with live state, so callers may range its maps after the
// lock is released.
func (s *Store) Subclan(name string) (Subclan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.state.Subclans[name]
	if !ok {
		return Subclan{}, false
	}
	return sc.Clone(), true
}

// SubclanOf returns the name of the subclan the user belongs to, if any.
func (s *Store) SubclanOf(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subclanOf(s.state, userID)
}

func subclanOf(st *State, userID string) (string, bool) {
	for name, sc := range st.Subclans {
		if sc.HasMember(userID) {
			return name, true
		}
	}
	return "", false
}

// SubclanLedBy returns the name of the subclan the user created, if any.
func (s *Store) SubclanLedBy(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subclanLedBy(s.state, userID)
}

func subclanLedBy(st *State, userID string) (string, bool) {
	for name, sc := range st.Subclans {
		if sc.CreatedBy == userID {
			return name, true
		}
	}
	return "", false
}

// AddWarning stores a warning under the next decimal id and returns the id.
// Ids are len+1 and can collide after deletions; warnings are effectively
// never deleted in practice, so the scheme is kept as is.
func (s *Store) AddWarning(w Warning) (string, error) {
	var id string
	err := s.Update(func(st *State) error {
		id = strconv.Itoa(len(st.Warnings) + 1)
		st.Warnings[id] = &w
		return nil
	})
	return id, err
}

func (s *Store) WarningsFor(userID string) map[string]Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Warning)
	for id, w := range s.state.Warnings {
		if w.UserID == userID {
			out[id] = *w
		}
	}
	return out
}

func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

func (s *Store) Roles() RoleConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Roles
}

func (s *Store) LeaveCooldown(userID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.state.LeaveCooldowns[userID]
	return t, ok
}

// Stats is the snapshot served by the HTTP API.
type Stats struct {
	Members      int `json:"members"`
	Applications int `json:"applications"`
	Subclans     int `json:"subclans"`
	Warnings     int `json:"warnings"`
	Events       int `json:"events"`
	Giveaways    int `json:"giveaways"`
	OpenTrades   int `json:"open_trades"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Members:      len(s.state.Members),
		Applications: len(s.state.Applications),
		Subclans:     len(s.state.Subclans),
		Warnings:     len(s.state.Warnings),
		Events:       len(s.state.Events),
	}
	for _, g := range s.state.Giveaways {
		if !g.Ended {
			st.Giveaways++
		}
	}
	for _, t := range s.state.Trading.Trades {
		if t.Status == TradeOpen {
			st.OpenTrades++
		}
	}
	return st
}
