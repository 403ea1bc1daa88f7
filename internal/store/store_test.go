package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "clan_data.json")
	backup := filepath.Join(dir, "clan_data_backup.json")
	s, err := Open(path, backup)
	require.NoError(t, err)
	return s, path, backup
}

func TestOpenCreatesDefaultState(t *testing.T) {
	s, path, _ := openTestStore(t)

	_, err := os.Stat(path)
	assert.NoError(t, err, "a fresh store must write its file immediately")

	settings := s.Settings()
	assert.Equal(t, 3, settings.MaxWarnings)
	assert.Equal(t, 30, settings.InactivityDays)
}

func TestUpdatePersistsAcrossReopen(t *testing.T) {
	s, path, backup := openTestStore(t)

	err := s.Update(func(st *State) error {
		st.Members["100"] = &Member{
			JoinedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Role:       RoleMember,
			AcceptedBy: "200",
		}
		return nil
	})
	require.NoError(t, err)

	reopened, err := Open(path, backup)
	require.NoError(t, err)

	m, ok := reopened.Member("100")
	require.True(t, ok)
	assert.Equal(t, "200", m.AcceptedBy)
	assert.Equal(t, RoleMember, m.Role)
}

func TestFullStateRoundTrip(t *testing.T) {
	s, path, backup := openTestStore(t)
	ts := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Update(func(st *State) error {
		st.Members["100"] = &Member{JoinedAt: ts, Role: RoleMember, AcceptedBy: "200"}
		st.Applications["300"] = &Application{
			Timestamp:  ts,
			Status:     "pending",
			Nickname:   "Ghost",
			Age:        "25",
			Experience: "3 года",
			Motivation: "хочу в клан",
		}
		st.Subclans["Альфа"] = &Subclan{
			CreatedAt:     ts,
			CreatedBy:     "100",
			MaxMembers:    5,
			Members:       []string{"100"},
			Applications:  map[string]*SubclanApplication{"300": {UserID: "300", Timestamp: ts}},
			CustomRoles:   map[string]*CustomRole{"r1": {ID: "r1", Name: "Страж", Color: "#FF0000"}},
			ExtraChannels: map[string]*ExtraChannel{"c1": {Name: "тактика", Type: "text", CreatedAt: ts}},
			Settings:      SubclanSettings{WelcomeMessage: "Привет, {user}!"},
		}
		st.Warnings["1"] = &Warning{UserID: "100", Reason: "спам", Timestamp: ts, IssuedBy: "200"}
		st.Factions.Factions["Орден"] = &Faction{
			Name:        "Орден",
			Description: "старая гвардия",
			Emoji:       "⚔️",
			RoleID:      "role-1",
			Color:       "#9B59B6",
		}
		return nil
	}))

	var before State
	s.View(func(st *State) { before = *st })

	reopened, err := Open(path, backup)
	require.NoError(t, err)

	reopened.View(func(st *State) {
		assert.Equal(t, before.Members, st.Members)
		assert.Equal(t, before.Applications, st.Applications)
		assert.Equal(t, before.Subclans, st.Subclans)
		assert.Equal(t, before.Warnings, st.Warnings)
		assert.Equal(t, before.Factions, st.Factions)
		assert.Equal(t, before.Settings, st.Settings)
	})
}

func TestUpdateErrorDoesNotPersist(t *testing.T) {
	s, path, backup := openTestStore(t)

	err := s.Update(func(st *State) error {
		return ErrNoChange
	})
	assert.ErrorIs(t, err, ErrNoChange)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Update(func(st *State) error {
		st.Settings.LogChannel = "555"
		return nil
	}))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, string(before), string(after))

	reopened, err := Open(path, backup)
	require.NoError(t, err)
	assert.Equal(t, "555", reopened.Settings().LogChannel)
}

func TestOpenFallsBackToBackup(t *testing.T) {
	s, path, backup := openTestStore(t)
	require.NoError(t, s.Update(func(st *State) error {
		st.Settings.WelcomeChannel = "42"
		return nil
	}))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	recovered, err := Open(path, backup)
	require.NoError(t, err)
	assert.Equal(t, "42", recovered.Settings().WelcomeChannel)
}

func TestOpenFailsWhenBothFilesCorrupt(t *testing.T) {
	_, path, backup := openTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(backup, []byte("also broken"), 0644))

	_, err := Open(path, backup)
	assert.Error(t, err)
}

func TestAddWarningAssignsSequentialIDs(t *testing.T) {
	s, _, _ := openTestStore(t)

	id1, err := s.AddWarning(Warning{UserID: "100", Reason: "spam", IssuedBy: "admin"})
	require.NoError(t, err)
	id2, err := s.AddWarning(Warning{UserID: "100", Reason: "caps", IssuedBy: "admin"})
	require.NoError(t, err)

	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)

	warnings := s.WarningsFor("100")
	assert.Len(t, warnings, 2)
}

func TestSubclanReturnsCopy(t *testing.T) {
	s, _, _ := openTestStore(t)
	require.NoError(t, s.Update(func(st *State) error {
		st.Subclans["Альфа"] = &Subclan{
			CreatedBy:  "1",
			MaxMembers: 5,
			Members:    []string{"1"},
		}
		return nil
	}))

	sc, ok := s.Subclan("Альфа")
	require.True(t, ok)
	sc.Members = append(sc.Members, "2")

	again, _ := s.Subclan("Альфа")
	assert.Len(t, again.Members, 1, "mutating the returned value must not touch the store")
}

func TestSubclanCopySharesNoMaps(t *testing.T) {
	s, _, _ := openTestStore(t)
	ts := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Update(func(st *State) error {
		st.Subclans["Альфа"] = &Subclan{
			CreatedBy:     "1",
			MaxMembers:    5,
			Members:       []string{"1"},
			Applications:  map[string]*SubclanApplication{"2": {UserID: "2", Timestamp: ts}},
			CustomRoles:   map[string]*CustomRole{"r1": {ID: "r1", Name: "Страж"}},
			ExtraChannels: map[string]*ExtraChannel{"c1": {Name: "тактика", Type: "text", CreatedAt: ts}},
		}
		return nil
	}))

	sc, ok := s.Subclan("Альфа")
	require.True(t, ok)

	// A concurrent reader may range these maps long after the lock is
	// released; later writes through Update must never touch its copy.
	require.NoError(t, s.Update(func(st *State) error {
		live := st.Subclans["Альфа"]
		live.Applications["3"] = &SubclanApplication{UserID: "3"}
		live.CustomRoles["r2"] = &CustomRole{ID: "r2"}
		live.ExtraChannels["c2"] = &ExtraChannel{Name: "голос", Type: "voice"}
		live.Applications["2"].Status = "rejected"
		return nil
	}))

	assert.Len(t, sc.Applications, 1)
	assert.Len(t, sc.CustomRoles, 1)
	assert.Len(t, sc.ExtraChannels, 1)
	assert.Empty(t, sc.Applications["2"].Status, "map values must be copied too")

	sc.Applications["4"] = &SubclanApplication{UserID: "4"}
	again, _ := s.Subclan("Альфа")
	assert.NotContains(t, again.Applications, "4", "writes to the copy must not reach the store")
}

func TestSubclanOfAndLedBy(t *testing.T) {
	s, _, _ := openTestStore(t)
	require.NoError(t, s.Update(func(st *State) error {
		st.Subclans["Альфа"] = &Subclan{
			CreatedBy: "1",
			Members:   []string{"1", "2"},
		}
		return nil
	}))

	name, ok := s.SubclanOf("2")
	require.True(t, ok)
	assert.Equal(t, "Альфа", name)

	_, ok = s.SubclanOf("3")
	assert.False(t, ok)

	led, ok := s.SubclanLedBy("1")
	require.True(t, ok)
	assert.Equal(t, "Альфа", led)

	_, ok = s.SubclanLedBy("2")
	assert.False(t, ok)
}

func TestStatsCountsOnlyOpenItems(t *testing.T) {
	s, _, _ := openTestStore(t)
	require.NoError(t, s.Update(func(st *State) error {
		st.Members["1"] = &Member{Role: RoleMember}
		st.Applications["2"] = &Application{Status: StatusPending}
		st.Giveaways["m1"] = &Giveaway{Prize: "ключ", Ended: false}
		st.Giveaways["m2"] = &Giveaway{Prize: "скин", Ended: true}
		st.Trading.Trades["t1"] = &Trade{Status: TradeOpen}
		st.Trading.Trades["t2"] = &Trade{Status: TradeCompleted}
		return nil
	}))

	stats := s.Stats()
	assert.Equal(t, 1, stats.Members)
	assert.Equal(t, 1, stats.Applications)
	assert.Equal(t, 1, stats.Giveaways)
	assert.Equal(t, 1, stats.OpenTrades)
}

func TestNormalizeFillsMissingCollections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clan_data.json")
	// An older state file that predates several subsystems.
	require.NoError(t, os.WriteFile(path, []byte(`{"members": {"1": {"role": "member"}}}`), 0644))

	s, err := Open(path, filepath.Join(dir, "backup.json"))
	require.NoError(t, err)

	err = s.Update(func(st *State) error {
		st.Activity["1"] = time.Now()
		st.Leveling.Users["1"] = &LevelUser{XP: 10}
		st.Trading.Interests["меч"] = []string{"1"}
		return nil
	})
	assert.NoError(t, err, "maps missing from the file must come back usable")
}
