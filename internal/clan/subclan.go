package clan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/animesao/clan-bot/internal/logger"
	"github.com/animesao/clan-bot/internal/store"
)

// Role and embed colors, shared with the command layer.
const (
	ColorGold   = 0xF1C40F
	ColorBlue   = 0x3498DB
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorOrange = 0xE67E22
)

// DefaultMaxMembers is used when the creator does not specify a limit.
const DefaultMaxMembers = 10

// Provisioner creates and destroys the external platform resources that
// back a subclan. The production implementation talks to the Discord API;
// tests substitute a fake.
type Provisioner interface {
	CreateCategory(name string) (string, error)
	CreateTextChannel(categoryID, name, topic string) (string, error)
	CreateVoiceChannel(categoryID, name string, userLimit int) (string, error)
	CreateRole(name string, color int) (string, error)
	DeleteChannel(channelID, reason string) error
	DeleteRole(roleID, reason string) error
	GrantRole(userID, roleID string) error
	RevokeRole(userID, roleID string) error
	// RestrictChannel hides the channel from everyone except the given
	// subclan roles.
	RestrictChannel(channelID string, roles store.SubclanRoles) error
	// AllowRole grants an additional role access to an already restricted
	// channel.
	AllowRole(channelID, roleID string) error
}

// Lifecycle implements every subclan operation. All membership mutations
// happen inside a single store transaction; external provisioning runs
// outside the lock with best-effort rollback on failure.
type Lifecycle struct {
	store *store.Store
	prov  Provisioner
	cool  *CooldownGuard
	log   *logger.Logger
}

func NewLifecycle(st *store.Store, prov Provisioner, cool *CooldownGuard, log *logger.Logger) *Lifecycle {
	return &Lifecycle{store: st, prov: prov, cool: cool, log: log}
}

// Create provisions a new subclan for the actor and records it. The actor
// becomes the sole, immutable leader and the first member.
func (l *Lifecycle) Create(actor Actor, name, description string, maxMembers int, now time.Time) (store.Subclan, error) {
	if maxMembers <= 0 {
		maxMembers = DefaultMaxMembers
	}
	if active, left := l.cool.Check(actor.ID, now); active {
		return store.Subclan{}, &CooldownError{Remaining: left}
	}
	if err := l.checkFree(actor.ID); err != nil {
		return store.Subclan{}, err
	}
	roles := l.store.Roles()
	if roles.Officer == "" {
		return store.Subclan{}, ErrOfficerRoleNotSet
	}
	if !actor.HasRole(roles.Officer) {
		return store.Subclan{}, ErrOfficerRoleRequired
	}
	if _, ok := l.store.Subclan(name); ok {
		return store.Subclan{}, ErrSubclanExists
	}

	res, err := l.provision(actor, name, maxMembers)
	if err != nil {
		return store.Subclan{}, err
	}

	sc := store.Subclan{
		Description:   description,
		CreatedAt:     now,
		CreatedBy:     actor.ID,
		MaxMembers:    maxMembers,
		Members:       []string{actor.ID},
		Channels:      res.channels,
		Roles:         res.roles,
		CustomRoles:   make(map[string]*store.CustomRole),
		ExtraChannels: make(map[string]*store.ExtraChannel),
		Applications:  make(map[string]*store.SubclanApplication),
	}
	err = l.store.Update(func(s *store.State) error {
		if _, ok := s.Subclans[name]; ok {
			return ErrSubclanExists
		}
		cp := sc
		s.Subclans[name] = &cp
		return nil
	})
	if err != nil {
		// Somebody committed the same name while we were provisioning.
		l.teardown(name, res.allChannels(), res.allRoles(), "создание склана отменено")
		return store.Subclan{}, err
	}
	l.log.Info(fmt.Sprintf("subclan created: %s by %s", name, actor.ID))
	return sc, nil
}

type provisioned struct {
	channels store.SubclanChannels
	roles    store.SubclanRoles
}

func (p *provisioned) allChannels() []string {
	return []string{p.channels.General, p.channels.Announcements, p.channels.Voice, p.channels.Category}
}

func (p *provisioned) allRoles() []string {
	return []string{p.roles.Leader, p.roles.Officer, p.roles.Member}
}

func (l *Lifecycle) provision(actor Actor, name string, maxMembers int) (*provisioned, error) {
	res := &provisioned{}
	fail := func(op string, err error) (*provisioned, error) {
		l.teardown(name, res.allChannels(), res.allRoles(), "создание склана не удалось")
		return nil, &ProvisionError{Op: op, Err: err}
	}

	var err error
	if res.roles.Leader, err = l.prov.CreateRole(name+" | Лидер", ColorGold); err != nil {
		return fail("create leader role", err)
	}
	if res.roles.Officer, err = l.prov.CreateRole(name+" | Офицер", ColorBlue); err != nil {
		return fail("create officer role", err)
	}
	if res.roles.Member, err = l.prov.CreateRole(name+" | Участник", ColorGreen); err != nil {
		return fail("create member role", err)
	}
	if res.channels.Category, err = l.prov.CreateCategory("📌 " + name); err != nil {
		return fail("create category", err)
	}
	if res.channels.General, err = l.prov.CreateTextChannel(res.channels.Category, "💬・общий", "Общий чат склана "+name); err != nil {
		return fail("create general channel", err)
	}
	if res.channels.Announcements, err = l.prov.CreateTextChannel(res.channels.Category, "📢・объявления", "Объявления склана "+name); err != nil {
		return fail("create announcements channel", err)
	}
	if res.channels.Voice, err = l.prov.CreateVoiceChannel(res.channels.Category, "🔊・Голосовой", maxMembers); err != nil {
		return fail("create voice channel", err)
	}
	for _, ch := range []string{res.channels.Category, res.channels.General, res.channels.Announcements, res.channels.Voice} {
		if err = l.prov.RestrictChannel(ch, res.roles); err != nil {
			return fail("restrict channel", err)
		}
	}
	if err = l.prov.GrantRole(actor.ID, res.roles.Leader); err != nil {
		return fail("grant leader role", err)
	}
	return res, nil
}

// teardown deletes whatever got provisioned. Failures are logged, not
// returned: a half-deleted subclan must not block the caller.
func (l *Lifecycle) teardown(name string, channels, roleIDs []string, reason string) {
	for _, ch := range channels {
		if ch == "" {
			continue
		}
		if err := l.prov.DeleteChannel(ch, reason); err != nil {
			l.log.Error(fmt.Sprintf("subclan %s: delete channel %s: %v", name, ch, err))
		}
	}
	for _, r := range roleIDs {
		if r == "" {
			continue
		}
		if err := l.prov.DeleteRole(r, reason); err != nil {
			l.log.Error(fmt.Sprintf("subclan %s: delete role %s: %v", name, r, err))
		}
	}
}

// Delete tears down the subclan's channels and roles and removes the
// record. Only the creator may delete. Resource deletion failures are
// logged and skipped so a single missing channel cannot wedge the whole
// teardown.
func (l *Lifecycle) Delete(actor Actor, name string) error {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return ErrNotLeader
	}
	channels := []string{sc.Channels.General, sc.Channels.Announcements, sc.Channels.Voice}
	for id := range sc.ExtraChannels {
		channels = append(channels, id)
	}
	channels = append(channels, sc.Channels.Category)
	l.teardown(name, channels, sc.AllRoleIDs(), "склан удалён")
	err := l.store.Update(func(s *store.State) error {
		if _, ok := s.Subclans[name]; !ok {
			return ErrSubclanNotFound
		}
		delete(s.Subclans, name)
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Info(fmt.Sprintf("subclan deleted: %s by %s", name, actor.ID))
	return nil
}

// Invite adds the target user directly. The membership append and every
// precondition run in one transaction, so the limit cannot be exceeded by
// concurrent invites.
func (l *Lifecycle) Invite(actor Actor, name, userID string) error {
	var roles store.SubclanRoles
	err := l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if err := authorizeManage(actor, sc); err != nil {
			return err
		}
		if sc.HasMember(userID) {
			return ErrAlreadyInThis
		}
		if other, ok := subclanOfState(s, userID); ok {
			return &AlreadyInSubclanError{Subclan: other}
		}
		if len(sc.Members) >= sc.MaxMembers {
			return ErrSubclanFull
		}
		sc.Members = append(sc.Members, userID)
		delete(sc.Applications, userID)
		roles = sc.Roles
		return nil
	})
	if err != nil {
		return err
	}
	if err := l.prov.GrantRole(userID, roles.Member); err != nil {
		// Roll the membership back so the record never claims a member
		// the platform does not show.
		rbErr := l.store.Update(func(s *store.State) error {
			if sc, ok := s.Subclans[name]; ok {
				sc.RemoveMember(userID)
			}
			return nil
		})
		if rbErr != nil {
			l.log.Error(fmt.Sprintf("subclan %s: rollback invite of %s: %v", name, userID, rbErr))
		}
		return &ProvisionError{Op: "grant member role", Err: err}
	}
	return nil
}

// Kick removes a member. The creator cannot be kicked.
func (l *Lifecycle) Kick(actor Actor, name, userID string) error {
	var roleIDs []string
	err := l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if err := authorizeManage(actor, sc); err != nil {
			return err
		}
		if userID == sc.CreatedBy {
			return ErrCannotKickLeader
		}
		if !sc.HasMember(userID) {
			return ErrNotInSubclan
		}
		sc.RemoveMember(userID)
		delete(sc.Applications, userID)
		roleIDs = sc.AllRoleIDs()
		return nil
	})
	if err != nil {
		return err
	}
	l.revokeAll(name, userID, roleIDs)
	return nil
}

// Leave removes the actor from the subclan and starts the re-entry
// cooldown. The creator cannot leave; they can only delete.
func (l *Lifecycle) Leave(actor Actor, name string, now time.Time) error {
	var roleIDs []string
	err := l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if actor.ID == sc.CreatedBy {
			return ErrLeaderCannotLeave
		}
		if !sc.HasMember(actor.ID) {
			return ErrNotInSubclan
		}
		sc.RemoveMember(actor.ID)
		s.LeaveCooldowns[actor.ID] = now
		roleIDs = sc.AllRoleIDs()
		return nil
	})
	if err != nil {
		return err
	}
	l.revokeAll(name, actor.ID, roleIDs)
	l.log.Info(fmt.Sprintf("subclan %s: %s left", name, actor.ID))
	return nil
}

// Promote grants the subclan officer role. Rank inside a subclan is the
// role itself; only membership lives in the record. Creator only.
func (l *Lifecycle) Promote(actor Actor, name string, target Actor) error {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return ErrNotLeader
	}
	if !sc.HasMember(target.ID) {
		return ErrNotInSubclan
	}
	if target.HasRole(sc.Roles.Officer) {
		return ErrAlreadyOfficer
	}
	if err := l.prov.GrantRole(target.ID, sc.Roles.Officer); err != nil {
		return &ProvisionError{Op: "grant officer role", Err: err}
	}
	return nil
}

// Demote revokes the subclan officer role. Creator only.
func (l *Lifecycle) Demote(actor Actor, name string, target Actor) error {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return ErrNotLeader
	}
	if !target.HasRole(sc.Roles.Officer) {
		return ErrNotOfficer
	}
	if err := l.prov.RevokeRole(target.ID, sc.Roles.Officer); err != nil {
		return &ProvisionError{Op: "revoke officer role", Err: err}
	}
	return nil
}

// Apply files a membership application to the subclan.
func (l *Lifecycle) Apply(actor Actor, name, reason string, now time.Time) error {
	if active, left := l.cool.Check(actor.ID, now); active {
		return &CooldownError{Remaining: left}
	}
	return l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if sc.HasMember(actor.ID) {
			return ErrAlreadyInThis
		}
		if other, ok := subclanOfState(s, actor.ID); ok {
			return &AlreadyInSubclanError{Subclan: other}
		}
		if led, ok := subclanLedByState(s, actor.ID); ok {
			return &AlreadyLeadsError{Subclan: led}
		}
		if len(sc.Members) >= sc.MaxMembers {
			return ErrSubclanFull
		}
		if _, ok := sc.Applications[actor.ID]; ok {
			return ErrAlreadyApplied
		}
		sc.Applications[actor.ID] = &store.SubclanApplication{
			UserID:    actor.ID,
			Reason:    reason,
			Timestamp: now,
			Status:    store.StatusPending,
		}
		return nil
	})
}

// AcceptApply turns a pending subclan application into membership.
func (l *Lifecycle) AcceptApply(actor Actor, name, userID string) error {
	var roles store.SubclanRoles
	err := l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if err := authorizeManage(actor, sc); err != nil {
			return err
		}
		if _, ok := sc.Applications[userID]; !ok {
			return ErrApplicationNotFound
		}
		if other, ok := subclanOfState(s, userID); ok {
			delete(sc.Applications, userID)
			return &AlreadyInSubclanError{Subclan: other}
		}
		if len(sc.Members) >= sc.MaxMembers {
			return ErrSubclanFull
		}
		delete(sc.Applications, userID)
		sc.Members = append(sc.Members, userID)
		roles = sc.Roles
		return nil
	})
	if err != nil {
		return err
	}
	if err := l.prov.GrantRole(userID, roles.Member); err != nil {
		rbErr := l.store.Update(func(s *store.State) error {
			if sc, ok := s.Subclans[name]; ok {
				sc.RemoveMember(userID)
			}
			return nil
		})
		if rbErr != nil {
			l.log.Error(fmt.Sprintf("subclan %s: rollback accept of %s: %v", name, userID, rbErr))
		}
		return &ProvisionError{Op: "grant member role", Err: err}
	}
	return nil
}

// RejectApply drops the pending application and returns it.
func (l *Lifecycle) RejectApply(actor Actor, name, userID string) (store.SubclanApplication, error) {
	var app store.SubclanApplication
	err := l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if err := authorizeManage(actor, sc); err != nil {
			return err
		}
		rec, ok := sc.Applications[userID]
		if !ok {
			return ErrApplicationNotFound
		}
		app = *rec
		delete(sc.Applications, userID)
		return nil
	})
	return app, err
}

// SetMaxMembers changes the member limit. Creator only; the new limit
// must not be below the current member count.
func (l *Lifecycle) SetMaxMembers(actor Actor, name string, max int) error {
	return l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if sc.CreatedBy != actor.ID {
			return ErrNotLeader
		}
		if max < len(sc.Members) {
			return ErrMaxBelowCurrent
		}
		sc.MaxMembers = max
		return nil
	})
}

// SetWelcome stores the greeting posted in the subclan general channel
// when someone joins. Empty text clears it. Creator only.
func (l *Lifecycle) SetWelcome(actor Actor, name, text string) error {
	return l.store.Update(func(s *store.State) error {
		sc, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if sc.CreatedBy != actor.ID {
			return ErrNotLeader
		}
		sc.Settings.WelcomeMessage = text
		return nil
	})
}

// AddCustomRole creates an extra colored role inside the subclan and opens
// the subclan channels to it. Creator only.
func (l *Lifecycle) AddCustomRole(actor Actor, name, roleName, colorHex string) (store.CustomRole, error) {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return store.CustomRole{}, ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return store.CustomRole{}, ErrNotLeader
	}
	color, err := ParseColor(colorHex)
	if err != nil {
		return store.CustomRole{}, err
	}
	roleID, err := l.prov.CreateRole(name+" | "+roleName, color)
	if err != nil {
		return store.CustomRole{}, &ProvisionError{Op: "create custom role", Err: err}
	}
	for _, ch := range []string{sc.Channels.General, sc.Channels.Announcements, sc.Channels.Voice} {
		if err := l.prov.AllowRole(ch, roleID); err != nil {
			l.log.Error(fmt.Sprintf("subclan %s: open channel %s to role %s: %v", name, ch, roleID, err))
		}
	}
	cr := store.CustomRole{ID: roleID, Name: roleName, Color: colorHex}
	err = l.store.Update(func(s *store.State) error {
		rec, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		cp := cr
		rec.CustomRoles[roleID] = &cp
		return nil
	})
	if err != nil {
		l.teardown(name, nil, []string{roleID}, "склан удалён во время создания роли")
		return store.CustomRole{}, err
	}
	return cr, nil
}

// RemoveRole deletes the officer, member or a custom role from the
// subclan. The leader role is immutable. Creator only.
func (l *Lifecycle) RemoveRole(actor Actor, name, roleName string) error {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return ErrNotLeader
	}
	roleID, custom, err := resolveRole(&sc, roleName)
	if err != nil {
		return err
	}
	if err := l.prov.DeleteRole(roleID, "роль склана удалена"); err != nil {
		return &ProvisionError{Op: "delete role", Err: err}
	}
	return l.store.Update(func(s *store.State) error {
		rec, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		if custom {
			delete(rec.CustomRoles, roleID)
			return nil
		}
		if rec.Roles.Officer == roleID {
			rec.Roles.Officer = ""
		}
		if rec.Roles.Member == roleID {
			rec.Roles.Member = ""
		}
		return nil
	})
}

// GiveRole swaps the member onto the named subclan role, revoking the
// other non-leader subclan roles first. Creator only.
func (l *Lifecycle) GiveRole(actor Actor, name string, target Actor, roleName string) error {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return ErrNotLeader
	}
	if !sc.HasMember(target.ID) {
		return ErrNotInSubclan
	}
	roleID, _, err := resolveRole(&sc, roleName)
	if err != nil {
		return err
	}
	for _, id := range sc.AllRoleIDs() {
		if id == roleID || id == sc.Roles.Leader || !target.HasRole(id) {
			continue
		}
		if err := l.prov.RevokeRole(target.ID, id); err != nil {
			l.log.Error(fmt.Sprintf("subclan %s: revoke role %s from %s: %v", name, id, target.ID, err))
		}
	}
	if err := l.prov.GrantRole(target.ID, roleID); err != nil {
		return &ProvisionError{Op: "grant role", Err: err}
	}
	return nil
}

// AddChannel creates an extra text or voice channel in the subclan
// category. Creator only.
func (l *Lifecycle) AddChannel(actor Actor, name, chType, chName string, now time.Time) (string, error) {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return "", ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return "", ErrNotLeader
	}
	var id string
	var err error
	switch chType {
	case "voice":
		id, err = l.prov.CreateVoiceChannel(sc.Channels.Category, "🔊・"+chName, sc.MaxMembers)
	default:
		chType = "text"
		id, err = l.prov.CreateTextChannel(sc.Channels.Category, "💬・"+chName, "")
	}
	if err != nil {
		return "", &ProvisionError{Op: "create channel", Err: err}
	}
	if err := l.prov.RestrictChannel(id, sc.Roles); err != nil {
		l.log.Error(fmt.Sprintf("subclan %s: restrict channel %s: %v", name, id, err))
	}
	err = l.store.Update(func(s *store.State) error {
		rec, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		rec.ExtraChannels[id] = &store.ExtraChannel{Name: chName, Type: chType, CreatedAt: now}
		return nil
	})
	if err != nil {
		l.teardown(name, []string{id}, nil, "склан удалён во время создания канала")
		return "", err
	}
	return id, nil
}

// RemoveChannel deletes an extra channel. Core channels are protected.
// Creator only.
func (l *Lifecycle) RemoveChannel(actor Actor, name, channelID string) error {
	sc, ok := l.store.Subclan(name)
	if !ok {
		return ErrSubclanNotFound
	}
	if sc.CreatedBy != actor.ID {
		return ErrNotLeader
	}
	switch channelID {
	case sc.Channels.Category, sc.Channels.General, sc.Channels.Announcements, sc.Channels.Voice:
		return ErrCoreChannel
	}
	if _, ok := sc.ExtraChannels[channelID]; !ok {
		return ErrChannelNotInSubclan
	}
	if err := l.prov.DeleteChannel(channelID, "канал склана удалён"); err != nil {
		return &ProvisionError{Op: "delete channel", Err: err}
	}
	return l.store.Update(func(s *store.State) error {
		rec, ok := s.Subclans[name]
		if !ok {
			return ErrSubclanNotFound
		}
		delete(rec.ExtraChannels, channelID)
		return nil
	})
}

// HandleMemberRemove drops the departed user from every subclan record
// and returns the names of the affected subclans.
func (l *Lifecycle) HandleMemberRemove(userID string) ([]string, error) {
	var affected []string
	err := l.store.Update(func(s *store.State) error {
		for name, sc := range s.Subclans {
			changed := false
			if sc.HasMember(userID) {
				sc.RemoveMember(userID)
				changed = true
			}
			if _, ok := sc.Applications[userID]; ok {
				delete(sc.Applications, userID)
				changed = true
			}
			if changed {
				affected = append(affected, name)
			}
		}
		if len(affected) == 0 {
			return store.ErrNoChange
		}
		return nil
	})
	if err == store.ErrNoChange {
		return nil, nil
	}
	return affected, err
}

func (l *Lifecycle) checkFree(userID string) error {
	if name, ok := l.store.SubclanOf(userID); ok {
		return &AlreadyInSubclanError{Subclan: name}
	}
	if name, ok := l.store.SubclanLedBy(userID); ok {
		return &AlreadyLeadsError{Subclan: name}
	}
	return nil
}

func (l *Lifecycle) revokeAll(name, userID string, roleIDs []string) {
	for _, id := range roleIDs {
		if err := l.prov.RevokeRole(userID, id); err != nil {
			l.log.Error(fmt.Sprintf("subclan %s: revoke role %s from %s: %v", name, id, userID, err))
		}
	}
}

// authorizeManage permits the creator and holders of the subclan leader
// or officer roles.
func authorizeManage(actor Actor, sc *store.Subclan) error {
	if actor.ID == sc.CreatedBy || actor.HasRole(sc.Roles.Leader) || actor.HasRole(sc.Roles.Officer) {
		return nil
	}
	return ErrNotLeaderOrOfficer
}

// resolveRole maps a user-supplied role name onto a subclan role id. The
// built-in names are matched case-insensitively; anything else is looked
// up among the custom roles.
func resolveRole(sc *store.Subclan, roleName string) (id string, custom bool, err error) {
	switch strings.ToLower(roleName) {
	case "лидер", "leader":
		return "", false, ErrLeaderRoleImmutable
	case "офицер", "officer":
		if sc.Roles.Officer == "" {
			return "", false, ErrRoleNotInSubclan
		}
		return sc.Roles.Officer, false, nil
	case "участник", "member":
		if sc.Roles.Member == "" {
			return "", false, ErrRoleNotInSubclan
		}
		return sc.Roles.Member, false, nil
	}
	for _, cr := range sc.CustomRoles {
		if strings.EqualFold(cr.Name, roleName) {
			return cr.ID, true, nil
		}
	}
	return "", false, ErrRoleNotInSubclan
}

// ParseColor parses a "#RRGGBB" or "RRGGBB" hex color.
func ParseColor(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return int(v), nil
}

func subclanOfState(s *store.State, userID string) (string, bool) {
	for name, sc := range s.Subclans {
		if sc.HasMember(userID) {
			return name, true
		}
	}
	return "", false
}

func subclanLedByState(s *store.State, userID string) (string, bool) {
	for name, sc := range s.Subclans {
		if sc.CreatedBy == userID {
			return name, true
		}
	}
	return "", false
}
