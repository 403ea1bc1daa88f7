package subclan

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/clan"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/types"
)

func init() {
	registry.RegisterCommand(ManageCommand)
}

var ManageCommand = &types.Command{
	Name:        "subclan-manage",
	Description: "Управление участниками склана",
	Category:    "Скланы",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "invite",
			Description: "Пригласить участника",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Кого пригласить", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "kick",
			Description: "Исключить участника",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Кого исключить", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "promote",
			Description: "Повысить участника до офицера",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Кого повысить", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "demote",
			Description: "Понизить офицера",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Кого понизить", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "accept",
			Description: "Принять заявку в склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Чью заявку принять", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "reject",
			Description: "Отклонить заявку в склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "user", Description: "Чью заявку отклонить", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			},
		},
		{
			Name:        "applications",
			Description: "Список заявок в склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "max",
			Description: "Изменить лимит участников",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "limit", Description: "Новый лимит", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		actor := cmdutil.Actor(i)
		name := opts.String("name")

		switch sub {
		case "invite":
			user := opts.User(s, i, "user")
			if err := d.Lifecycle.Invite(actor, name, user.ID); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			notifyMember(user.ID, fmt.Sprintf("Вас приняли в склан **%s**!", name))
			welcomeMember(name, user.ID)
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ <@%s> добавлен в склан **%s**.", user.ID, name))

		case "kick":
			user := opts.User(s, i, "user")
			if err := d.Lifecycle.Kick(actor, name, user.ID); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			notifyMember(user.ID, fmt.Sprintf("Вас исключили из склана **%s**.", name))
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ <@%s> исключён из склана **%s**.", user.ID, name))

		case "promote":
			user := opts.User(s, i, "user")
			target, err := targetActor(s, i.GuildID, user.ID)
			if err != nil {
				return err
			}
			if err := d.Lifecycle.Promote(actor, name, target); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("⭐ <@%s> теперь офицер склана **%s**.", user.ID, name))

		case "demote":
			user := opts.User(s, i, "user")
			target, err := targetActor(s, i.GuildID, user.ID)
			if err != nil {
				return err
			}
			if err := d.Lifecycle.Demote(actor, name, target); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ <@%s> больше не офицер склана **%s**.", user.ID, name))

		case "accept":
			user := opts.User(s, i, "user")
			if err := d.Lifecycle.AcceptApply(actor, name, user.ID); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			notifyMember(user.ID, fmt.Sprintf("Ваша заявка в склан **%s** принята!", name))
			welcomeMember(name, user.ID)
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Заявка <@%s> принята.", user.ID))

		case "reject":
			user := opts.User(s, i, "user")
			if _, err := d.Lifecycle.RejectApply(actor, name, user.ID); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			notifyMember(user.ID, fmt.Sprintf("Ваша заявка в склан **%s** отклонена.", name))
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Заявка <@%s> отклонена.", user.ID))

		case "applications":
			return runApplications(s, i, name)

		case "max":
			if err := d.Lifecycle.SetMaxMembers(actor, name, opts.Int("limit")); err != nil {
				return cmdutil.ReplyError(s, i, err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Лимит участников склана **%s** теперь %d.", name, opts.Int("limit")))
		}
		return nil
	},
}

func runApplications(s *discordgo.Session, i *discordgo.InteractionCreate, name string) error {
	sc, ok := d.Store.Subclan(name)
	if !ok {
		return cmdutil.ReplyEphemeral(s, i, "❌ Склан с таким названием не найден.")
	}
	if len(sc.Applications) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "Заявок нет.")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📨 Заявки в склан %s", name),
		Color: 0x3498DB,
	}
	for userID, app := range sc.Applications {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Заявка от <t:%d:D>", app.Timestamp.Unix()),
			Value: fmt.Sprintf("<@%s>: %s", userID, app.Reason),
		})
	}
	return cmdutil.ReplyEmbed(s, i, embed)
}

// targetActor builds the actor for a user other than the interaction
// author, loading their roles from the guild.
func targetActor(s *discordgo.Session, guildID, userID string) (clan.Actor, error) {
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return clan.Actor{}, fmt.Errorf("fetch member %s: %v", userID, err)
	}
	return clan.Actor{ID: userID, RoleIDs: member.Roles}, nil
}

// welcomeMember posts the subclan's configured greeting in its general
// channel for the newcomer.
func welcomeMember(name, userID string) {
	sc, ok := d.Store.Subclan(name)
	if !ok || sc.Settings.WelcomeMessage == "" || sc.Channels.General == "" {
		return
	}
	text := strings.ReplaceAll(sc.Settings.WelcomeMessage, "{user}", "<@"+userID+">")
	d.Notify.Channel(sc.Channels.General, text, nil)
}

// notifyMember tells the user what happened; closed DMs are fine.
func notifyMember(userID, text string) {
	res := d.Notify.DM(userID, &discordgo.MessageEmbed{
		Description: text,
		Color:       0x3498DB,
	})
	if !res.Delivered {
		d.Log.Debug(fmt.Sprintf("subclan notice for %s not delivered", userID))
	}
}
