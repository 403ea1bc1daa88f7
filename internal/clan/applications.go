package clan

import (
	"time"

	"github.com/animesao/clan-bot/internal/store"
)

// ApplicationForm carries the answers the applicant filled into the modal.
type ApplicationForm struct {
	Nickname    string
	Age         string
	Experience  string
	Motivation  string
	Screenshots []string
}

// Applications runs the clan membership application workflow. One pending
// application per user; acceptance atomically promotes it to a member
// record so a user is never applicant and member at the same time.
type Applications struct {
	store *store.Store
}

func NewApplications(st *store.Store) *Applications {
	return &Applications{store: st}
}

// Submit files an application. The originating channel must pass the
// allow-list when one is configured.
func (a *Applications) Submit(userID, channelID string, form ApplicationForm, now time.Time) error {
	settings := a.store.Settings()
	if len(settings.ApplyChannels) > 0 {
		allowed := false
		for _, ch := range settings.ApplyChannels {
			if ch == channelID {
				allowed = true
				break
			}
		}
		if !allowed {
			return &ChannelNotAllowedError{Allowed: settings.ApplyChannels}
		}
	}
	return a.store.Update(func(s *store.State) error {
		if _, ok := s.Members[userID]; ok {
			return ErrAlreadyClanMember
		}
		if _, ok := s.Applications[userID]; ok {
			return ErrAlreadyApplied
		}
		s.Applications[userID] = &store.Application{
			Timestamp:   now,
			Status:      store.StatusPending,
			Nickname:    form.Nickname,
			Age:         form.Age,
			Experience:  form.Experience,
			Motivation:  form.Motivation,
			Screenshots: form.Screenshots,
		}
		return nil
	})
}

// Accept promotes the pending application into a member record and returns
// the accepted application. Only clan leaders and officers may accept.
func (a *Applications) Accept(actor Actor, userID string, now time.Time) (store.Application, error) {
	if err := a.authorize(actor); err != nil {
		return store.Application{}, err
	}
	var app store.Application
	err := a.store.Update(func(s *store.State) error {
		rec, ok := s.Applications[userID]
		if !ok {
			return ErrApplicationNotFound
		}
		app = *rec
		delete(s.Applications, userID)
		s.Members[userID] = &store.Member{
			JoinedAt:   now,
			Role:       store.RoleMember,
			AcceptedBy: actor.ID,
		}
		return nil
	})
	return app, err
}

// Reject removes the pending application and returns it for the audit
// message.
func (a *Applications) Reject(actor Actor, userID string) (store.Application, error) {
	if err := a.authorize(actor); err != nil {
		return store.Application{}, err
	}
	var app store.Application
	err := a.store.Update(func(s *store.State) error {
		rec, ok := s.Applications[userID]
		if !ok {
			return ErrApplicationNotFound
		}
		app = *rec
		delete(s.Applications, userID)
		return nil
	})
	return app, err
}

func (a *Applications) authorize(actor Actor) error {
	roles := a.store.Roles()
	if actor.HasRole(roles.Leader) || actor.HasRole(roles.Officer) {
		return nil
	}
	return ErrNotLeaderOrOfficer
}
