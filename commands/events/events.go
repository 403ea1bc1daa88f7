package eventscmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

// dateLayout is the format users type event dates in.
const dateLayout = "02.01.2006 15:04"

var d *deps.Deps

func Setup(dd *deps.Deps) {
	d = dd
}

func init() {
	registry.RegisterCommand(EventCommand)
}

var EventCommand = &types.Command{
	Name:        "event",
	Description: "События клана",
	Category:    "События",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "create",
			Description: "Создать событие",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "date", Description: "Дата и время (ДД.ММ.ГГГГ ЧЧ:ММ)", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "description", Description: "Описание", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "delete",
			Description: "Удалить событие",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "join",
			Description: "Записаться на событие",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "leave",
			Description: "Отписаться от события",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "list",
			Description: "Предстоящие события",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        "finish",
			Description: "Завершить событие и объявить итоги",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "results", Description: "Итоги события", Type: discordgo.ApplicationCommandOptionString},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		actor := cmdutil.Actor(i)
		name := opts.String("name")

		switch sub {
		case "create":
			return runCreate(s, i, actor.ID, name, opts)
		case "delete":
			return runDelete(s, i, actor.ID, name)
		case "join":
			return runJoin(s, i, actor.ID, name)
		case "leave":
			return runLeave(s, i, actor.ID, name)
		case "list":
			return runList(s, i)
		case "finish":
			return runFinish(s, i, actor.ID, name, opts.String("results"))
		}
		return nil
	},
}

func runCreate(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name string, opts cmdutil.OptionMap) error {
	date, err := time.ParseInLocation(dateLayout, opts.String("date"), time.Local)
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Неверный формат даты. Используйте ДД.ММ.ГГГГ ЧЧ:ММ.")
	}
	if date.Before(time.Now()) {
		return cmdutil.ReplyEphemeral(s, i, "❌ Дата события уже прошла.")
	}
	description := opts.String("description")

	err = d.Store.Update(func(st *store.State) error {
		if _, ok := st.Events[name]; ok {
			return fmt.Errorf("event %q already exists", name)
		}
		st.Events[name] = &store.ClanEvent{
			Name:         name,
			Date:         date,
			Description:  description,
			Participants: []string{userID},
			CreatedBy:    userID,
		}
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Событие с таким названием уже существует.")
	}

	settings := d.Store.Settings()
	d.Notify.Channel(settings.AnnouncementChannel, "", &discordgo.MessageEmbed{
		Title:       "📅 Новое событие: " + name,
		Description: fmt.Sprintf("%s\n\n**Когда:** <t:%d:F>\nЗаписаться: `/event join name:%s`", description, date.Unix(), name),
		Color:       0x3498DB,
	})
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Событие **%s** создано на <t:%d:F>.", name, date.Unix()))
}

func runDelete(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name string) error {
	err := d.Store.Update(func(st *store.State) error {
		ev, ok := st.Events[name]
		if !ok {
			return fmt.Errorf("not found")
		}
		if ev.CreatedBy != userID {
			return fmt.Errorf("not creator")
		}
		delete(st.Events, name)
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Событие не найдено или вы не его организатор.")
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Событие **%s** удалено.", name))
}

func runJoin(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name string) error {
	var already bool
	err := d.Store.Update(func(st *store.State) error {
		ev, ok := st.Events[name]
		if !ok {
			return fmt.Errorf("not found")
		}
		for _, p := range ev.Participants {
			if p == userID {
				already = true
				return store.ErrNoChange
			}
		}
		ev.Participants = append(ev.Participants, userID)
		return nil
	})
	if already {
		return cmdutil.ReplyEphemeral(s, i, "Вы уже записаны на это событие.")
	}
	if err != nil && err != store.ErrNoChange {
		return cmdutil.ReplyEphemeral(s, i, "❌ Событие не найдено.")
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Вы записаны на событие **%s**.", name))
}

func runLeave(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name string) error {
	err := d.Store.Update(func(st *store.State) error {
		ev, ok := st.Events[name]
		if !ok {
			return fmt.Errorf("not found")
		}
		for idx, p := range ev.Participants {
			if p == userID {
				ev.Participants = append(ev.Participants[:idx], ev.Participants[idx+1:]...)
				return nil
			}
		}
		return fmt.Errorf("not participant")
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Вы не записаны на это событие.")
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Вы отписались от события **%s**.", name))
}

func runFinish(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name, results string) error {
	var ev store.ClanEvent
	err := d.Store.Update(func(st *store.State) error {
		rec, ok := st.Events[name]
		if !ok {
			return fmt.Errorf("not found")
		}
		if rec.CreatedBy != userID {
			return fmt.Errorf("not creator")
		}
		ev = *rec
		delete(st.Events, name)
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Событие не найдено или вы не его организатор.")
	}

	desc := fmt.Sprintf("Участников: %d", len(ev.Participants))
	if results != "" {
		desc = results + "\n\n" + desc
	}
	settings := d.Store.Settings()
	d.Notify.Channel(settings.AnnouncementChannel, "", &discordgo.MessageEmbed{
		Title:       "🏁 Событие завершено: " + name,
		Description: desc,
		Color:       0x2ECC71,
	})
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Событие **%s** завершено.", name))
}

func runList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	var events []store.ClanEvent
	d.Store.View(func(st *store.State) {
		for _, ev := range st.Events {
			events = append(events, *ev)
		}
	})
	if len(events) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "Предстоящих событий нет.")
	}
	sort.Slice(events, func(a, b int) bool { return events[a].Date.Before(events[b].Date) })

	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "📅 **%s** — <t:%d:F> (%d участников)\n%s\n\n", ev.Name, ev.Date.Unix(), len(ev.Participants), ev.Description)
	}
	return cmdutil.ReplyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "События клана",
		Description: b.String(),
		Color:       0x3498DB,
	})
}
