package tempcmd

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

var d *deps.Deps

func Setup(dd *deps.Deps) {
	d = dd
}

func init() {
	registry.RegisterCommand(TempVoiceCommand)
}

var TempVoiceCommand = &types.Command{
	Name:        "temp-voice",
	Description: "Временные голосовые каналы",
	Category:    "Администрирование",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "setup",
			Description: "Настроить временные каналы",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "enabled", Description: "Включить", Type: discordgo.ApplicationCommandOptionBoolean, Required: true},
				{Name: "category", Description: "Категория для каналов", Type: discordgo.ApplicationCommandOptionChannel},
				{Name: "create-channel", Description: "Канал «создать свой»", Type: discordgo.ApplicationCommandOptionChannel},
				{Name: "template", Description: "Шаблон имени ({username})", Type: discordgo.ApplicationCommandOptionString},
				{Name: "user-limit", Description: "Лимит участников", Type: discordgo.ApplicationCommandOptionInteger},
			},
		},
		{
			Name:        "view",
			Description: "Текущие настройки",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "setup":
			return runSetup(s, i, opts)
		case "view":
			return runView(s, i)
		}
		return nil
	},
}

func runSetup(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	err := d.Store.Update(func(st *store.State) error {
		st.TempChannels.Enabled = opts.Bool("enabled")
		if ch := opts.Channel(s, "category"); ch != "" {
			st.TempChannels.CategoryID = ch
		}
		if ch := opts.Channel(s, "create-channel"); ch != "" {
			st.TempChannels.CreateChannelID = ch
		}
		if t := opts.String("template"); t != "" {
			st.TempChannels.NameTemplate = t
		}
		if v := opts.Int("user-limit"); v > 0 {
			st.TempChannels.UserLimit = v
		}
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Настройки временных каналов обновлены.")
}

func runView(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	var settings store.TempChannelSettings
	d.Store.View(func(st *store.State) { settings = st.TempChannels })

	state := "выключены"
	if settings.Enabled {
		state = "включены"
	}
	ch := func(id string) string {
		if id == "" {
			return "не задан"
		}
		return "<#" + id + ">"
	}
	return cmdutil.ReplyEmbed(s, i, &discordgo.MessageEmbed{
		Title: "🎮 Временные каналы",
		Color: 0x2B2D31,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Состояние", Value: state, Inline: true},
			{Name: "Категория", Value: ch(settings.CategoryID), Inline: true},
			{Name: "Канал создания", Value: ch(settings.CreateChannelID), Inline: true},
			{Name: "Шаблон имени", Value: settings.NameTemplate, Inline: true},
			{Name: "Лимит участников", Value: fmt.Sprintf("%d", settings.UserLimit), Inline: true},
		},
	})
}
