package leveling

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animesao/clan-bot/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.json"), filepath.Join(dir, "backup.json"))
	require.NoError(t, err)
	return NewService(st), st
}

var now = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func TestXPCurve(t *testing.T) {
	assert.Equal(t, 100, XPForLevel(0))
	assert.Equal(t, 155, XPForLevel(1))
	assert.Equal(t, 220, XPForLevel(2))

	assert.Equal(t, 0, LevelForXP(0))
	assert.Equal(t, 0, LevelForXP(99))
	assert.Equal(t, 1, LevelForXP(100))
	assert.Equal(t, 1, LevelForXP(254))
	assert.Equal(t, 2, LevelForXP(255))
}

func TestProgress(t *testing.T) {
	into, needed := Progress(120, 1)
	assert.Equal(t, 20, into)
	assert.Equal(t, 155, needed)
}

func TestAwardMessageXPCooldown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AwardMessageXP("1", now)
	require.NoError(t, err)

	// Inside the window nothing accrues.
	_, err = svc.AwardMessageXP("1", now.Add(30*time.Second))
	require.NoError(t, err)

	u, ok := svc.User("1")
	require.True(t, ok)
	assert.Equal(t, 5, u.XP)
	assert.Equal(t, 1, u.TotalMessages)

	_, err = svc.AwardMessageXP("1", now.Add(61*time.Second))
	require.NoError(t, err)
	u, _ = svc.User("1")
	assert.Equal(t, 10, u.XP)
	assert.Equal(t, 2, u.TotalMessages)
}

func TestAwardMessageXPDisabled(t *testing.T) {
	svc, st := newTestService(t)
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Leveling.Enabled = false
		return nil
	}))

	up, err := svc.AwardMessageXP("1", now)
	require.NoError(t, err)
	assert.Nil(t, up)

	_, ok := svc.User("1")
	assert.False(t, ok)
}

func TestLevelUpReportsReward(t *testing.T) {
	svc, st := newTestService(t)
	require.NoError(t, svc.SetReward(1, "reward-role"))
	// 20 messages at 5 XP reach exactly 100 XP.
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Leveling.Users["1"] = &store.LevelUser{XP: 95, Level: 0}
		return nil
	}))

	up, err := svc.AwardMessageXP("1", now)
	require.NoError(t, err)
	require.NotNil(t, up)
	assert.Equal(t, 1, up.NewLevel)
	assert.Equal(t, "reward-role", up.RewardRole)

	// The next message does not cross a boundary.
	up, err = svc.AwardMessageXP("1", now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, up)
}

func TestVoiceXPInFiveMinuteSlices(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.VoiceJoined("1", now))
	// 17 minutes is three full slices: 3 * 2 XP/min * 5 min = 30 XP.
	_, err := svc.VoiceLeft("1", now.Add(17*time.Minute))
	require.NoError(t, err)

	u, ok := svc.User("1")
	require.True(t, ok)
	assert.Equal(t, 30, u.XP)
	assert.InDelta(t, 17, u.VoiceMinutes, 0.01)
	assert.Nil(t, u.LastVoiceJoin)
}

func TestVoiceLeftWithoutJoin(t *testing.T) {
	svc, _ := newTestService(t)
	up, err := svc.VoiceLeft("1", now)
	require.NoError(t, err)
	assert.Nil(t, up)
}

func TestTopOrdersByXPThenVoice(t *testing.T) {
	svc, st := newTestService(t)
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Leveling.Users["a"] = &store.LevelUser{XP: 100, VoiceMinutes: 5}
		s.Leveling.Users["b"] = &store.LevelUser{XP: 300}
		s.Leveling.Users["c"] = &store.LevelUser{XP: 100, VoiceMinutes: 50}
		return nil
	}))

	top := svc.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].UserID)
	assert.Equal(t, "c", top[1].UserID)
}

func TestSetRewardClear(t *testing.T) {
	svc, st := newTestService(t)
	require.NoError(t, svc.SetReward(5, "role-5"))
	require.NoError(t, svc.SetReward(5, ""))

	st.View(func(s *store.State) {
		assert.Empty(t, s.Leveling.Rewards)
	})
}
