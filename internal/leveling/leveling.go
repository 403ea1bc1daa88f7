// Package leveling awards XP for chat and voice activity.
package leveling

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/animesao/clan-bot/internal/store"
)

// Anti-spam windows. A user earns message XP at most once per minute and
// voice XP is credited in five minute slices.
const (
	MessageCooldown = 60 * time.Second
	VoiceSlice      = 5 * time.Minute
)

// XPForLevel is the XP needed to go from the given level to the next one.
func XPForLevel(level int) int {
	return 5*level*level + 50*level + 100
}

// LevelForXP converts a total XP amount into a level.
func LevelForXP(xp int) int {
	level := 0
	for xp >= XPForLevel(level) {
		xp -= XPForLevel(level)
		level++
	}
	return level
}

// Progress returns the XP already earned inside the current level and the
// level's requirement.
func Progress(totalXP, level int) (into, needed int) {
	for l := 0; l < level; l++ {
		totalXP -= XPForLevel(l)
	}
	return totalXP, XPForLevel(level)
}

// Service accrues XP. Message cooldowns are in-memory only; a restart
// forgiving a minute of cooldown is acceptable, the XP itself is
// persisted.
type Service struct {
	store *store.Store

	mu          sync.Mutex
	lastMessage map[string]time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{store: st, lastMessage: make(map[string]time.Time)}
}

// LevelUp describes a level boundary crossing and the reward role, if one
// is configured for the new level.
type LevelUp struct {
	NewLevel   int
	RewardRole string
}

// AwardMessageXP credits one message. It returns nil when leveling is
// disabled, the cooldown is active, or no level boundary was crossed.
func (s *Service) AwardMessageXP(userID string, now time.Time) (*LevelUp, error) {
	s.mu.Lock()
	if last, ok := s.lastMessage[userID]; ok && now.Sub(last) < MessageCooldown {
		s.mu.Unlock()
		return nil, nil
	}
	s.lastMessage[userID] = now
	s.mu.Unlock()

	var up *LevelUp
	err := s.store.Update(func(st *store.State) error {
		lv := &st.Leveling
		if !lv.Enabled {
			return store.ErrNoChange
		}
		u := userRecord(lv, userID)
		u.XP += lv.XPPerMessage
		u.TotalMessages++
		up = applyLevel(lv, u)
		return nil
	})
	if err == store.ErrNoChange {
		return nil, nil
	}
	return up, err
}

// VoiceJoined marks the start of a voice session.
func (s *Service) VoiceJoined(userID string, now time.Time) error {
	err := s.store.Update(func(st *store.State) error {
		lv := &st.Leveling
		if !lv.Enabled {
			return store.ErrNoChange
		}
		u := userRecord(lv, userID)
		t := now
		u.LastVoiceJoin = &t
		return nil
	})
	if err == store.ErrNoChange {
		return nil
	}
	return err
}

// VoiceLeft closes the voice session and credits XP for every full five
// minute slice spent connected.
func (s *Service) VoiceLeft(userID string, now time.Time) (*LevelUp, error) {
	var up *LevelUp
	err := s.store.Update(func(st *store.State) error {
		lv := &st.Leveling
		u, ok := lv.Users[userID]
		if !ok || u.LastVoiceJoin == nil {
			return store.ErrNoChange
		}
		elapsed := now.Sub(*u.LastVoiceJoin)
		u.LastVoiceJoin = nil
		if elapsed <= 0 {
			return nil
		}
		u.VoiceMinutes += elapsed.Minutes()
		if lv.Enabled {
			slices := int(elapsed / VoiceSlice)
			u.XP += slices * lv.XPPerVoiceMinute * int(VoiceSlice.Minutes())
			up = applyLevel(lv, u)
		}
		return nil
	})
	if err == store.ErrNoChange {
		return nil, nil
	}
	return up, err
}

// User returns the persisted record.
func (s *Service) User(userID string) (store.LevelUser, bool) {
	var u store.LevelUser
	var ok bool
	s.store.View(func(st *store.State) {
		var rec *store.LevelUser
		if rec, ok = st.Leveling.Users[userID]; ok {
			u = *rec
		}
	})
	return u, ok
}

// Entry is one leaderboard row.
type Entry struct {
	UserID string
	User   store.LevelUser
}

// Top returns the n highest users ordered by total XP, with voice minutes
// breaking ties.
func (s *Service) Top(n int) []Entry {
	var entries []Entry
	s.store.View(func(st *store.State) {
		for id, u := range st.Leveling.Users {
			entries = append(entries, Entry{UserID: id, User: *u})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].User.XP != entries[j].User.XP {
			return entries[i].User.XP > entries[j].User.XP
		}
		return entries[i].User.VoiceMinutes > entries[j].User.VoiceMinutes
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// SetReward binds a role reward to a level. An empty roleID clears it.
func (s *Service) SetReward(level int, roleID string) error {
	return s.store.Update(func(st *store.State) error {
		key := strconv.Itoa(level)
		if roleID == "" {
			delete(st.Leveling.Rewards, key)
			return nil
		}
		st.Leveling.Rewards[key] = &store.LevelReward{RoleID: roleID}
		return nil
	})
}

func userRecord(lv *store.LevelingState, userID string) *store.LevelUser {
	u, ok := lv.Users[userID]
	if !ok {
		u = &store.LevelUser{}
		lv.Users[userID] = u
	}
	return u
}

// applyLevel recomputes the level from total XP and reports a crossing.
func applyLevel(lv *store.LevelingState, u *store.LevelUser) *LevelUp {
	level := LevelForXP(u.XP)
	if level <= u.Level {
		u.Level = level
		return nil
	}
	u.Level = level
	up := &LevelUp{NewLevel: level}
	if r, ok := lv.Rewards[strconv.Itoa(level)]; ok {
		up.RewardRole = r.RoleID
	}
	return up
}
