package clan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animesao/clan-bot/internal/logger"
	"github.com/animesao/clan-bot/internal/store"
)

// fakeProvisioner records every platform call and can be told to fail a
// specific operation.
type fakeProvisioner struct {
	seq int

	createdChannels []string
	createdRoles    []string
	deletedChannels []string
	deletedRoles    []string
	granted         map[string][]string
	revoked         map[string][]string
	restricted      []string
	allowed         map[string][]string

	failRole    string // role name substring that fails CreateRole
	failGrant   bool
	failChannel string // channel name substring that fails creation
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		granted: make(map[string][]string),
		revoked: make(map[string][]string),
		allowed: make(map[string][]string),
	}
}

func (f *fakeProvisioner) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeProvisioner) CreateCategory(name string) (string, error) {
	id := f.nextID("cat")
	f.createdChannels = append(f.createdChannels, id)
	return id, nil
}

func (f *fakeProvisioner) CreateTextChannel(categoryID, name, topic string) (string, error) {
	if f.failChannel != "" && strings.Contains(name, f.failChannel) {
		return "", errors.New("api unavailable")
	}
	id := f.nextID("txt")
	f.createdChannels = append(f.createdChannels, id)
	return id, nil
}

func (f *fakeProvisioner) CreateVoiceChannel(categoryID, name string, userLimit int) (string, error) {
	if f.failChannel != "" && strings.Contains(name, f.failChannel) {
		return "", errors.New("api unavailable")
	}
	id := f.nextID("vc")
	f.createdChannels = append(f.createdChannels, id)
	return id, nil
}

func (f *fakeProvisioner) CreateRole(name string, color int) (string, error) {
	if f.failRole != "" && strings.Contains(name, f.failRole) {
		return "", errors.New("api unavailable")
	}
	id := f.nextID("role")
	f.createdRoles = append(f.createdRoles, id)
	return id, nil
}

func (f *fakeProvisioner) DeleteChannel(channelID, reason string) error {
	f.deletedChannels = append(f.deletedChannels, channelID)
	return nil
}

func (f *fakeProvisioner) DeleteRole(roleID, reason string) error {
	f.deletedRoles = append(f.deletedRoles, roleID)
	return nil
}

func (f *fakeProvisioner) GrantRole(userID, roleID string) error {
	if f.failGrant {
		return errors.New("api unavailable")
	}
	f.granted[userID] = append(f.granted[userID], roleID)
	return nil
}

func (f *fakeProvisioner) RevokeRole(userID, roleID string) error {
	f.revoked[userID] = append(f.revoked[userID], roleID)
	return nil
}

func (f *fakeProvisioner) RestrictChannel(channelID string, roles store.SubclanRoles) error {
	f.restricted = append(f.restricted, channelID)
	return nil
}

func (f *fakeProvisioner) AllowRole(channelID, roleID string) error {
	f.allowed[channelID] = append(f.allowed[channelID], roleID)
	return nil
}

const officerRoleID = "guild-officer"

func newTestLifecycle(t *testing.T) (*Lifecycle, *store.Store, *fakeProvisioner) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.json"), filepath.Join(dir, "backup.json"))
	require.NoError(t, err)
	require.NoError(t, st.Update(func(s *store.State) error {
		s.Roles.Officer = officerRoleID
		return nil
	}))
	prov := newFakeProvisioner()
	log := logger.New(struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	}{Level: "error", File: filepath.Join(dir, "test.log")})
	lc := NewLifecycle(st, prov, NewCooldownGuard(st), log)
	return lc, st, prov
}

func officer(id string) Actor {
	return Actor{ID: id, RoleIDs: []string{officerRoleID}}
}

var now = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func TestCreateProvisionsAndRecords(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)

	sc, err := lc.Create(officer("1"), "Альфа", "тест", 5, now)
	require.NoError(t, err)

	assert.Equal(t, "1", sc.CreatedBy)
	assert.Equal(t, []string{"1"}, sc.Members)
	assert.Equal(t, 5, sc.MaxMembers)
	assert.NotEmpty(t, sc.Roles.Leader)
	assert.NotEmpty(t, sc.Channels.General)

	// Three roles and four channels (category, two text, one voice).
	assert.Len(t, prov.createdRoles, 3)
	assert.Len(t, prov.createdChannels, 4)
	assert.Len(t, prov.restricted, 4)
	assert.Contains(t, prov.granted["1"], sc.Roles.Leader)

	rec, ok := st.Subclan("Альфа")
	require.True(t, ok)
	assert.Equal(t, sc.Roles, rec.Roles)
}

func TestCreateRequiresOfficerRole(t *testing.T) {
	lc, _, prov := newTestLifecycle(t)

	_, err := lc.Create(Actor{ID: "1"}, "Альфа", "", 0, now)
	assert.ErrorIs(t, err, ErrOfficerRoleRequired)
	assert.Empty(t, prov.createdRoles, "nothing may be provisioned before the checks pass")
}

func TestCreateDuplicateNameNoProvisioning(t *testing.T) {
	lc, _, prov := newTestLifecycle(t)

	_, err := lc.Create(officer("1"), "Альфа", "", 0, now)
	require.NoError(t, err)
	before := len(prov.createdRoles)

	_, err = lc.Create(officer("2"), "Альфа", "", 0, now)
	assert.ErrorIs(t, err, ErrSubclanExists)
	assert.Len(t, prov.createdRoles, before)
}

func TestCreateTearsDownOnProvisionFailure(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)
	prov.failChannel = "Голосовой"

	_, err := lc.Create(officer("1"), "Альфа", "", 0, now)

	var provErr *ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "create voice channel", provErr.Op)

	// Everything created before the failure must be deleted again.
	assert.ElementsMatch(t, prov.createdRoles, prov.deletedRoles)
	assert.ElementsMatch(t, prov.createdChannels, prov.deletedChannels)

	_, ok := st.Subclan("Альфа")
	assert.False(t, ok)
}

func TestCreateOnlyOneSubclanPerUser(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)

	_, err := lc.Create(officer("1"), "Альфа", "", 0, now)
	require.NoError(t, err)

	_, err = lc.Create(officer("1"), "Бета", "", 0, now)
	var already *AlreadyInSubclanError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "Альфа", already.Subclan)
}

func TestInviteRespectsCapacity(t *testing.T) {
	lc, st, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 2, now)
	require.NoError(t, err)

	require.NoError(t, lc.Invite(leader, "Альфа", "2"))
	err = lc.Invite(leader, "Альфа", "3")
	assert.ErrorIs(t, err, ErrSubclanFull)

	sc, _ := st.Subclan("Альфа")
	assert.Len(t, sc.Members, 2)
}

func TestInviteRollsBackWhenGrantFails(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	prov.failGrant = true
	err = lc.Invite(leader, "Альфа", "2")

	var provErr *ProvisionError
	require.ErrorAs(t, err, &provErr)

	sc, _ := st.Subclan("Альфа")
	assert.False(t, sc.HasMember("2"), "a failed role grant must not leave a phantom member")
}

func TestInviteRejectsMemberOfOtherSubclan(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	_, err := lc.Create(officer("1"), "Альфа", "", 5, now)
	require.NoError(t, err)
	_, err = lc.Create(officer("2"), "Бета", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Invite(officer("1"), "Альфа", "3"))

	err = lc.Invite(officer("2"), "Бета", "3")
	var already *AlreadyInSubclanError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "Альфа", already.Subclan)
}

func TestKickCannotRemoveCreator(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	err = lc.Kick(leader, "Альфа", "1")
	assert.ErrorIs(t, err, ErrCannotKickLeader)
}

func TestKickRevokesRoles(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Invite(leader, "Альфа", "2"))

	require.NoError(t, lc.Kick(leader, "Альфа", "2"))

	sc, _ := st.Subclan("Альфа")
	assert.False(t, sc.HasMember("2"))
	assert.NotEmpty(t, prov.revoked["2"])
}

func TestLeaveCreatorBlocked(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	err = lc.Leave(leader, "Альфа", now)
	assert.ErrorIs(t, err, ErrLeaderCannotLeave)
}

func TestLeaveStartsReentryCooldown(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Invite(leader, "Альфа", "2"))

	require.NoError(t, lc.Leave(Actor{ID: "2"}, "Альфа", now))

	// Applying to another subclan inside the window is blocked.
	err = lc.Apply(Actor{ID: "2"}, "Альфа", "хочу назад", now.Add(time.Hour))
	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Greater(t, cooldown.Remaining, time.Duration(0))

	// After the window the same user may apply again.
	err = lc.Apply(Actor{ID: "2"}, "Альфа", "хочу назад", now.Add(LeaveCooldown+time.Minute))
	assert.NoError(t, err)
}

func TestCooldownBlocksCreate(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Invite(leader, "Альфа", "2"))
	require.NoError(t, lc.Leave(officer("2"), "Альфа", now))

	_, err = lc.Create(officer("2"), "Бета", "", 0, now.Add(time.Hour))
	var cooldown *CooldownError
	assert.ErrorAs(t, err, &cooldown)
}

func TestApplyAcceptFlow(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	require.NoError(t, lc.Apply(Actor{ID: "2"}, "Альфа", "опытный игрок", now))

	err = lc.Apply(Actor{ID: "2"}, "Альфа", "ещё раз", now)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	require.NoError(t, lc.AcceptApply(leader, "Альфа", "2"))

	sc, _ := st.Subclan("Альфа")
	assert.True(t, sc.HasMember("2"))
	assert.Empty(t, sc.Applications)
	assert.Contains(t, prov.granted["2"], sc.Roles.Member)
}

func TestAcceptApplyRespectsCapacity(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 2, now)
	require.NoError(t, err)
	require.NoError(t, lc.Apply(Actor{ID: "2"}, "Альфа", "", now))
	require.NoError(t, lc.Apply(Actor{ID: "3"}, "Альфа", "", now))

	require.NoError(t, lc.AcceptApply(leader, "Альфа", "2"))
	err = lc.AcceptApply(leader, "Альфа", "3")
	assert.ErrorIs(t, err, ErrSubclanFull)
}

func TestRejectApplyReturnsApplication(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Apply(Actor{ID: "2"}, "Альфа", "возьмите", now))

	app, err := lc.RejectApply(leader, "Альфа", "2")
	require.NoError(t, err)
	assert.Equal(t, "возьмите", app.Reason)

	_, err = lc.RejectApply(leader, "Альфа", "2")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestManageRequiresAuthority(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	_, err := lc.Create(officer("1"), "Альфа", "", 5, now)
	require.NoError(t, err)

	err = lc.Invite(Actor{ID: "99"}, "Альфа", "2")
	assert.ErrorIs(t, err, ErrNotLeaderOrOfficer)
}

func TestDeleteTearsDownEverything(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)
	leader := officer("1")
	sc, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	err = lc.Delete(Actor{ID: "2"}, "Альфа")
	assert.ErrorIs(t, err, ErrNotLeader)

	require.NoError(t, lc.Delete(leader, "Альфа"))

	_, ok := st.Subclan("Альфа")
	assert.False(t, ok)
	assert.Contains(t, prov.deletedChannels, sc.Channels.Category)
	assert.Contains(t, prov.deletedRoles, sc.Roles.Leader)
}

func TestSetMaxMembersFloor(t *testing.T) {
	lc, st, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Invite(leader, "Альфа", "2"))
	require.NoError(t, lc.Invite(leader, "Альфа", "3"))

	err = lc.SetMaxMembers(leader, "Альфа", 2)
	assert.ErrorIs(t, err, ErrMaxBelowCurrent)

	require.NoError(t, lc.SetMaxMembers(leader, "Альфа", 4))
	sc, _ := st.Subclan("Альфа")
	assert.Equal(t, 4, sc.MaxMembers)
}

func TestCustomRoleLifecycle(t *testing.T) {
	lc, st, prov := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	cr, err := lc.AddCustomRole(leader, "Альфа", "Ветеран", "#AABBCC")
	require.NoError(t, err)
	assert.NotEmpty(t, cr.ID)
	assert.Len(t, prov.allowed, 3, "custom role must be allowed into the three core channels")

	require.NoError(t, lc.RemoveRole(leader, "Альфа", "ветеран"))
	sc, _ := st.Subclan("Альфа")
	assert.Empty(t, sc.CustomRoles)
}

func TestRemoveRoleLeaderImmutable(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	err = lc.RemoveRole(leader, "Альфа", "Лидер")
	assert.ErrorIs(t, err, ErrLeaderRoleImmutable)
	err = lc.RemoveRole(leader, "Альфа", "leader")
	assert.ErrorIs(t, err, ErrLeaderRoleImmutable)
}

func TestRemoveChannelProtectsCore(t *testing.T) {
	lc, st, _ := newTestLifecycle(t)
	leader := officer("1")
	sc, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)

	err = lc.RemoveChannel(leader, "Альфа", sc.Channels.General)
	assert.ErrorIs(t, err, ErrCoreChannel)

	id, err := lc.AddChannel(leader, "Альфа", "text", "мемы", now)
	require.NoError(t, err)
	require.NoError(t, lc.RemoveChannel(leader, "Альфа", id))

	rec, _ := st.Subclan("Альфа")
	assert.Empty(t, rec.ExtraChannels)
}

func TestHandleMemberRemove(t *testing.T) {
	lc, st, _ := newTestLifecycle(t)
	leader := officer("1")
	_, err := lc.Create(leader, "Альфа", "", 5, now)
	require.NoError(t, err)
	require.NoError(t, lc.Invite(leader, "Альфа", "2"))

	affected, err := lc.HandleMemberRemove("2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Альфа"}, affected)

	sc, _ := st.Subclan("Альфа")
	assert.False(t, sc.HasMember("2"))

	affected, err = lc.HandleMemberRemove("2")
	require.NoError(t, err)
	assert.Nil(t, affected)
}

func TestParseColor(t *testing.T) {
	v, err := ParseColor("#F1C40F")
	require.NoError(t, err)
	assert.Equal(t, 0xF1C40F, v)

	v, err = ParseColor("3498db")
	require.NoError(t, err)
	assert.Equal(t, 0x3498DB, v)

	_, err = ParseColor("red")
	assert.Error(t, err)
	_, err = ParseColor("#FFF")
	assert.Error(t, err)
}
