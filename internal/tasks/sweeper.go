// Package tasks runs the periodic maintenance jobs: finishing due
// giveaways, reminding about upcoming events, dropping stale records and
// reporting inactive members.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/giveaway"
	"github.com/animesao/clan-bot/internal/store"
)

const (
	giveawayInterval   = time.Minute
	eventInterval      = time.Hour
	cooldownInterval   = time.Hour
	inactivityInterval = 24 * time.Hour

	// staleEventAge is how long after its date an event record is kept.
	staleEventAge = 24 * time.Hour

	giveawayEmoji = "🎉"
)

type Sweeper struct {
	d       *deps.Deps
	session *discordgo.Session

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweeper(d *deps.Deps, session *discordgo.Session) *Sweeper {
	return &Sweeper{d: d, session: session}
}

func (w *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.run(ctx, giveawayInterval, w.sweepGiveaways)
	w.run(ctx, eventInterval, w.sweepEvents)
	w.run(ctx, cooldownInterval, w.sweepCooldowns)
	w.run(ctx, inactivityInterval, w.sweepInactivity)

	w.d.Log.Info("Background sweeps started")
}

func (w *Sweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Sweeper) run(ctx context.Context, interval time.Duration, job func(time.Time)) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				job(now)
			}
		}
	}()
}

// sweepGiveaways finishes every giveaway whose end time passed: flips it
// to ended first so a crash between the flip and the announcement can
// never draw twice.
func (w *Sweeper) sweepGiveaways(now time.Time) {
	for messageID, g := range w.d.Giveaways.Due(now) {
		// Losing the test-and-set means someone ended it by hand between
		// the Due snapshot and here; their draw stands.
		if err := w.d.Giveaways.MarkEnded(messageID); err != nil {
			if !errors.Is(err, giveaway.ErrAlreadyEnded) {
				w.d.Log.Error(fmt.Sprintf("mark giveaway %s ended: %v", messageID, err))
			}
			continue
		}
		w.finishGiveaway(messageID, g)
	}
}

func (w *Sweeper) finishGiveaway(messageID string, g store.Giveaway) {
	users, err := w.session.MessageReactions(g.ChannelID, messageID, giveawayEmoji, 100, "", "")
	if err != nil {
		w.d.Log.Error(fmt.Sprintf("fetch giveaway %s entrants: %v", messageID, err))
	}
	entrants := make([]string, 0, len(users))
	for _, u := range users {
		if !u.Bot {
			entrants = append(entrants, u.ID)
		}
	}

	winners := w.d.Giveaways.PickWinners(entrants, g.Winners)

	var result, text string
	if len(winners) == 0 {
		result = "Участников не было."
		text = fmt.Sprintf("Розыгрыш **%s** завершён — участников не было.", g.Prize)
	} else {
		mentions := make([]string, len(winners))
		for i, id := range winners {
			mentions[i] = "<@" + id + ">"
		}
		result = "Победители: " + strings.Join(mentions, ", ")
		text = fmt.Sprintf("🎉 Розыгрыш **%s** завершён! Победители: %s", g.Prize, strings.Join(mentions, ", "))
	}

	ended := &discordgo.MessageEmbed{
		Title:       "🏁 Розыгрыш завершён: " + g.Prize,
		Description: result,
		Color:       0x95A5A6,
	}
	if _, err := w.session.ChannelMessageEditEmbed(g.ChannelID, messageID, ended); err != nil {
		w.d.Log.Error(fmt.Sprintf("edit giveaway %s message: %v", messageID, err))
	}

	w.d.Notify.Channel(g.ChannelID, text, nil)
}

// sweepEvents sends due reminders and drops events long past their date.
func (w *Sweeper) sweepEvents(now time.Time) {
	settings := w.d.Store.Settings()
	window := time.Duration(settings.EventReminderHours) * time.Hour

	type reminder struct {
		name string
		ev   store.ClanEvent
	}
	var reminders []reminder

	err := w.d.Store.Update(func(st *store.State) error {
		changed := false
		for name, ev := range st.Events {
			if now.Sub(ev.Date) > staleEventAge {
				delete(st.Events, name)
				changed = true
				continue
			}
			if !ev.Reminded && ev.Date.After(now) && ev.Date.Sub(now) <= window {
				ev.Reminded = true
				reminders = append(reminders, reminder{name: name, ev: *ev})
				changed = true
			}
		}
		if !changed {
			return store.ErrNoChange
		}
		return nil
	})
	if err != nil && err != store.ErrNoChange {
		w.d.Log.Error(fmt.Sprintf("sweep events: %v", err))
		return
	}

	for _, r := range reminders {
		embed := &discordgo.MessageEmbed{
			Title:       "⏰ Напоминание о событии",
			Description: fmt.Sprintf("**%s** начнётся <t:%d:R>!\n%s", r.name, r.ev.Date.Unix(), r.ev.Description),
			Color:       0x3498DB,
		}
		w.d.Notify.Channel(settings.AnnouncementChannel, "", embed)
		for _, userID := range r.ev.Participants {
			res := w.d.Notify.DM(userID, embed)
			if !res.Delivered {
				w.d.Log.Debug(fmt.Sprintf("event reminder for %s not delivered", userID))
			}
		}
	}
}

func (w *Sweeper) sweepCooldowns(now time.Time) {
	removed, err := w.d.Cooldowns.Sweep(now)
	if err != nil {
		w.d.Log.Error(fmt.Sprintf("sweep cooldowns: %v", err))
		return
	}
	if removed > 0 {
		w.d.Log.Debug(fmt.Sprintf("removed %d expired leave cooldowns", removed))
	}
}

// sweepInactivity reports members silent longer than the configured
// window to the log channel. Nobody is kicked automatically.
func (w *Sweeper) sweepInactivity(now time.Time) {
	settings := w.d.Store.Settings()
	if settings.InactivityDays <= 0 || settings.LogChannel == "" {
		return
	}
	threshold := time.Duration(settings.InactivityDays) * 24 * time.Hour

	var inactive []string
	w.d.Store.View(func(st *store.State) {
		for userID, m := range st.Members {
			last, ok := st.Activity[userID]
			if !ok {
				last = m.JoinedAt
			}
			if now.Sub(last) > threshold {
				inactive = append(inactive, userID)
			}
		}
	})
	if len(inactive) == 0 {
		return
	}

	mentions := make([]string, len(inactive))
	for i, id := range inactive {
		mentions[i] = "<@" + id + ">"
	}
	embed := &discordgo.MessageEmbed{
		Title:       "😴 Неактивные участники",
		Description: fmt.Sprintf("Не проявляли активность более %d дней:\n%s", settings.InactivityDays, strings.Join(mentions, "\n")),
		Color:       0xE67E22,
	}
	w.d.Notify.Channel(settings.LogChannel, "", embed)
}
