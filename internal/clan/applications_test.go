package clan

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animesao/clan-bot/internal/store"
)

const (
	leaderRoleID = "guild-leader"
	applyChannel = "apply-ch"
)

func newTestApplications(t *testing.T) (*Applications, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.json"), filepath.Join(dir, "backup.json"))
	require.NoError(t, err)
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Roles.Leader = leaderRoleID
		s.Roles.Officer = officerRoleID
		s.Settings.ApplyChannels = []string{applyChannel}
		return nil
	}))
	return NewApplications(st), st
}

func clanLeader(id string) Actor {
	return Actor{ID: id, RoleIDs: []string{leaderRoleID}}
}

var form = ApplicationForm{
	Nickname:   "Ghost",
	Age:        "21",
	Experience: "3 года",
	Motivation: "хочу играть с кланом",
}

func TestSubmitEnforcesChannelAllowList(t *testing.T) {
	apps, _ := newTestApplications(t)

	err := apps.Submit("100", "random-ch", form, now)
	var notAllowed *ChannelNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, []string{applyChannel}, notAllowed.Allowed)

	assert.NoError(t, apps.Submit("100", applyChannel, form, now))
}

func TestSubmitEmptyAllowListMeansAnywhere(t *testing.T) {
	apps, st := newTestApplications(t)
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Settings.ApplyChannels = nil
		return nil
	}))

	assert.NoError(t, apps.Submit("100", "any-ch", form, now))
}

func TestSubmitRejectsExistingMemberAndDuplicate(t *testing.T) {
	apps, st := newTestApplications(t)
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Members["100"] = &store.Member{Role: store.RoleMember}
		return nil
	}))

	err := apps.Submit("100", applyChannel, form, now)
	assert.ErrorIs(t, err, ErrAlreadyClanMember)

	require.NoError(t, apps.Submit("200", applyChannel, form, now))
	err = apps.Submit("200", applyChannel, form, now)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestAcceptPromotesToMember(t *testing.T) {
	apps, st := newTestApplications(t)
	require.NoError(t, apps.Submit("100", applyChannel, form, now))

	accepted := now.Add(time.Hour)
	app, err := apps.Accept(clanLeader("900"), "100", accepted)
	require.NoError(t, err)
	assert.Equal(t, "Ghost", app.Nickname)

	m, ok := st.Member("100")
	require.True(t, ok)
	assert.Equal(t, store.RoleMember, m.Role)
	assert.Equal(t, "900", m.AcceptedBy)
	assert.Equal(t, accepted, m.JoinedAt)

	// The pending application is gone; one user is never applicant and
	// member at once.
	_, ok = st.Application("100")
	assert.False(t, ok)
}

func TestAcceptRequiresLeaderOrOfficer(t *testing.T) {
	apps, _ := newTestApplications(t)
	require.NoError(t, apps.Submit("100", applyChannel, form, now))

	_, err := apps.Accept(Actor{ID: "900"}, "100", now)
	assert.ErrorIs(t, err, ErrNotLeaderOrOfficer)

	_, err = apps.Accept(officer("900"), "100", now)
	assert.NoError(t, err)
}

func TestRejectDropsApplication(t *testing.T) {
	apps, st := newTestApplications(t)
	require.NoError(t, apps.Submit("100", applyChannel, form, now))

	app, err := apps.Reject(clanLeader("900"), "100")
	require.NoError(t, err)
	assert.Equal(t, "Ghost", app.Nickname)

	_, ok := st.Application("100")
	assert.False(t, ok)
	_, ok = st.Member("100")
	assert.False(t, ok)

	_, err = apps.Reject(clanLeader("900"), "100")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestCooldownGuardSweep(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.json"), filepath.Join(dir, "backup.json"))
	require.NoError(t, err)
	guard := NewCooldownGuard(st)

	require.NoError(t, guard.Start("1", now))
	require.NoError(t, guard.Start("2", now.Add(-2*LeaveCooldown)))

	active, left := guard.Check("1", now.Add(time.Hour))
	assert.True(t, active)
	assert.Equal(t, LeaveCooldown-time.Hour, left)

	active, _ = guard.Check("2", now)
	assert.False(t, active)

	removed, err := guard.Sweep(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Nothing left to sweep; the store must not be rewritten.
	removed, err = guard.Sweep(now)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
