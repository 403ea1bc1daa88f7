package giveaway

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animesao/clan-bot/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.json"), filepath.Join(dir, "backup.json"))
	require.NoError(t, err)
	return NewManager(st, rand.NewSource(1))
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1д", 24 * time.Hour},
		{"2ч", 2 * time.Hour},
		{"30м", 30 * time.Minute},
		{"1д 12ч 30м", 36*time.Hour + 30*time.Minute},
		{"2h45m", 2*time.Hour + 45*time.Minute},
		{"1D", 24 * time.Hour},
		{"3 ч", 3 * time.Hour},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseDurationErrors(t *testing.T) {
	_, err := ParseDuration("скоро")
	assert.ErrorIs(t, err, ErrBadDuration)

	_, err = ParseDuration("")
	assert.ErrorIs(t, err, ErrBadDuration)

	_, err = ParseDuration("0м")
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1д 12ч 30м", FormatDuration(36*time.Hour+30*time.Minute))
	assert.Equal(t, "2ч", FormatDuration(2*time.Hour))
	assert.Equal(t, "45м", FormatDuration(45*time.Minute))
	assert.Equal(t, "0м", FormatDuration(10*time.Second))
}

func TestDueAndMarkEnded(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, m.Create("msg1", store.Giveaway{Prize: "ключ", EndTime: now.Add(-time.Minute)}))
	require.NoError(t, m.Create("msg2", store.Giveaway{Prize: "скин", EndTime: now.Add(time.Hour)}))

	due := m.Due(now)
	require.Len(t, due, 1)
	assert.Equal(t, "ключ", due["msg1"].Prize)

	require.NoError(t, m.MarkEnded("msg1"))
	assert.Empty(t, m.Due(now), "an ended giveaway must never be drawn again")

	g, ok := m.Get("msg1")
	require.True(t, ok)
	assert.True(t, g.Ended)
}

func TestMarkEndedOnlyOnce(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Create("msg1", store.Giveaway{Prize: "ключ"}))

	require.NoError(t, m.MarkEnded("msg1"))
	assert.ErrorIs(t, m.MarkEnded("msg1"), ErrAlreadyEnded,
		"the second finisher must lose the draw")
}

func TestMarkEndedUnknown(t *testing.T) {
	m := newTestManager(t)
	assert.ErrorIs(t, m.MarkEnded("nope"), ErrNotFound)
}

func TestCancelRemoves(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Create("msg1", store.Giveaway{Prize: "ключ"}))
	require.NoError(t, m.Cancel("msg1"))

	_, ok := m.Get("msg1")
	assert.False(t, ok)
	assert.ErrorIs(t, m.Cancel("msg1"), ErrNotFound)
}

func TestPickWinners(t *testing.T) {
	m := newTestManager(t)
	entrants := []string{"a", "b", "c", "d", "e"}

	winners := m.PickWinners(entrants, 2)
	require.Len(t, winners, 2)
	assert.NotEqual(t, winners[0], winners[1])
	for _, w := range winners {
		assert.Contains(t, entrants, w)
	}

	// The input slice stays untouched.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, entrants)
}

func TestPickWinnersEverybodyWins(t *testing.T) {
	m := newTestManager(t)
	winners := m.PickWinners([]string{"a", "b"}, 5)
	assert.ElementsMatch(t, []string{"a", "b"}, winners)
}

func TestPickWinnersEmpty(t *testing.T) {
	m := newTestManager(t)
	assert.Nil(t, m.PickWinners(nil, 3))
	assert.Nil(t, m.PickWinners([]string{"a"}, 0))
}

func TestPickWinnersDeterministicWithSeed(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.json"), filepath.Join(dir, "backup.json"))
	require.NoError(t, err)

	entrants := []string{"a", "b", "c", "d", "e", "f"}
	first := NewManager(st, rand.NewSource(42)).PickWinners(entrants, 3)
	second := NewManager(st, rand.NewSource(42)).PickWinners(entrants, 3)
	assert.Equal(t, first, second)
}
