package subclan

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/types"
)

func init() {
	registry.RegisterCommand(CustomizeCommand)
}

var CustomizeCommand = &types.Command{
	Name:        "subclan-customize",
	Description: "Роли и каналы склана",
	Category:    "Скланы",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "role-add",
			Description: "Создать свою роль в склане",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "role", Description: "Название роли", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "color", Description: "Цвет в формате #RRGGBB", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "role-remove",
			Description: "Удалить роль склана",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "role", Description: "Название роли", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "role-give",
			Description: "Выдать роль склана участнику",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Участник", Type: discordgo.ApplicationCommandOptionUser, Required: true},
				{Name: "role", Description: "Название роли", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "channel-add",
			Description: "Создать дополнительный канал",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "channel", Description: "Название канала", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{
					Name: "type", Description: "Тип канала", Type: discordgo.ApplicationCommandOptionString,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Текстовый", Value: "text"},
						{Name: "Голосовой", Value: "voice"},
					},
				},
			},
		},
		{
			Name:        "welcome",
			Description: "Приветствие для новых участников склана",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "text", Description: "Текст ({user} — упоминание; пусто — убрать)", Type: discordgo.ApplicationCommandOptionString},
			},
		},
		{
			Name:        "channel-remove",
			Description: "Удалить дополнительный канал",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "channel", Description: "Канал", Type: discordgo.ApplicationCommandOptionChannel, Required: true},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		actor := cmdutil.Actor(i)
		name := opts.String("name")

		switch sub {
		case "role-add":
			cr, err := d.Lifecycle.AddCustomRole(actor, name, opts.String("role"), opts.String("color"))
			if err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Роль <@&%s> создана.", cr.ID))

		case "role-remove":
			if err := d.Lifecycle.RemoveRole(actor, name, opts.String("role")); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, "✅ Роль удалена.")

		case "role-give":
			user := opts.User(s, i, "user")
			target, err := targetActor(s, i.GuildID, user.ID)
			if err != nil {
				return err
			}
			if err := d.Lifecycle.GiveRole(actor, name, target, opts.String("role")); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Роль выдана <@%s>.", user.ID))

		case "channel-add":
			id, err := d.Lifecycle.AddChannel(actor, name, opts.String("type"), opts.String("channel"), time.Now())
			if err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Канал <#%s> создан.", id))

		case "welcome":
			text := opts.String("text")
			if err := d.Lifecycle.SetWelcome(actor, name, text); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			if text == "" {
				return cmdutil.ReplyEphemeral(s, i, "✅ Приветствие убрано.")
			}
			return cmdutil.ReplyEphemeral(s, i, "✅ Приветствие сохранено.")

		case "channel-remove":
			channelID := opts.Channel(s, "channel")
			if err := d.Lifecycle.RemoveChannel(actor, name, channelID); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, "✅ Канал удалён.")
		}
		return nil
	},
}
