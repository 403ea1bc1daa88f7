package members

import (
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

func init() {
	registry.RegisterCommand(WarnCommand)
}

var WarnCommand = &types.Command{
	Name:        "warn",
	Description: "Предупреждения участников",
	Category:    "Модерация",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "add",
			Description: "Выдать предупреждение",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "user", Description: "Кому", Type: discordgo.ApplicationCommandOptionUser, Required: true},
				{Name: "reason", Description: "Причина", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "list",
			Description: "Предупреждения участника",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "user", Description: "Чьи предупреждения", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "remove",
			Description: "Снять предупреждение",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "id", Description: "Номер предупреждения", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "add":
			return runWarnAdd(s, i, opts)
		case "list":
			return runWarnList(s, i, opts)
		case "remove":
			return runWarnRemove(s, i, opts)
		}
		return nil
	},
}

func runWarnAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	user := opts.User(s, i, "user")
	reason := opts.String("reason")
	actor := cmdutil.Actor(i)

	id, err := d.Store.AddWarning(store.Warning{
		UserID:    user.ID,
		Reason:    reason,
		Timestamp: time.Now(),
		IssuedBy:  actor.ID,
	})
	if err != nil {
		return err
	}

	count := len(d.Store.WarningsFor(user.ID))
	settings := d.Store.Settings()

	d.Notify.DM(user.ID, &discordgo.MessageEmbed{
		Title:       "⚠️ Предупреждение",
		Description: fmt.Sprintf("Вы получили предупреждение №%s.\n**Причина:** %s", id, reason),
		Color:       0xE67E22,
	})

	if settings.MaxWarnings > 0 && count >= settings.MaxWarnings {
		d.Notify.Channel(settings.LogChannel, "", &discordgo.MessageEmbed{
			Title:       "🚨 Лимит предупреждений",
			Description: fmt.Sprintf("<@%s> получил %d предупреждений (лимит %d). Требуется решение администрации.", user.ID, count, settings.MaxWarnings),
			Color:       0xE74C3C,
		})
	}

	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Предупреждение №%s выдано <@%s> (%d/%d).", id, user.ID, count, settings.MaxWarnings))
}

func runWarnList(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	user := opts.User(s, i, "user")
	warnings := d.Store.WarningsFor(user.ID)
	if len(warnings) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "У этого участника нет предупреждений.")
	}

	ids := make([]string, 0, len(warnings))
	for id := range warnings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚠️ Предупреждения: %s", user.Username),
		Color: 0xE67E22,
	}
	for _, id := range ids {
		w := warnings[id]
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("№%s — <t:%d:D>", id, w.Timestamp.Unix()),
			Value: fmt.Sprintf("%s (выдал <@%s>)", w.Reason, w.IssuedBy),
		})
	}
	return cmdutil.ReplyEmbed(s, i, embed)
}

func runWarnRemove(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	id := opts.String("id")
	err := d.Store.Update(func(st *store.State) error {
		if _, ok := st.Warnings[id]; !ok {
			return fmt.Errorf("warning %s not found", id)
		}
		delete(st.Warnings, id)
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Предупреждение с таким номером не найдено.")
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Предупреждение №%s снято.", id))
}
