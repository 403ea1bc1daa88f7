// Package cmdutil holds the small helpers every command package needs:
// interaction option access, replies and the mapping from domain errors
// to the messages users see.
package cmdutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/clan"
	"github.com/animesao/clan-bot/internal/giveaway"
)

// Actor builds the domain actor from the interaction member.
func Actor(i *discordgo.InteractionCreate) clan.Actor {
	a := clan.Actor{}
	if i.Member != nil {
		a.RoleIDs = i.Member.Roles
		if i.Member.User != nil {
			a.ID = i.Member.User.ID
		}
	} else if i.User != nil {
		a.ID = i.User.ID
	}
	return a
}

type OptionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func mapOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) OptionMap {
	m := make(OptionMap, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// Options returns the top-level options keyed by name.
func Options(i *discordgo.InteractionCreate) OptionMap {
	return mapOptions(i.ApplicationCommandData().Options)
}

// Subcommand returns the invoked subcommand name and its options.
func Subcommand(i *discordgo.InteractionCreate) (string, OptionMap) {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 || opts[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", nil
	}
	return opts[0].Name, mapOptions(opts[0].Options)
}

func (m OptionMap) String(name string) string {
	if o, ok := m[name]; ok {
		return o.StringValue()
	}
	return ""
}

func (m OptionMap) Int(name string) int {
	if o, ok := m[name]; ok {
		return int(o.IntValue())
	}
	return 0
}

func (m OptionMap) Bool(name string) bool {
	if o, ok := m[name]; ok {
		return o.BoolValue()
	}
	return false
}

func (m OptionMap) User(s *discordgo.Session, i *discordgo.InteractionCreate, name string) *discordgo.User {
	if o, ok := m[name]; ok {
		return o.UserValue(s)
	}
	return nil
}

func (m OptionMap) Channel(s *discordgo.Session, name string) string {
	if o, ok := m[name]; ok && o.ChannelValue(s) != nil {
		return o.ChannelValue(s).ID
	}
	return ""
}

func (m OptionMap) Role(s *discordgo.Session, i *discordgo.InteractionCreate, name string) string {
	if o, ok := m[name]; ok && o.RoleValue(s, i.GuildID) != nil {
		return o.RoleValue(s, i.GuildID).ID
	}
	return ""
}

// ReplyEphemeral answers the interaction with a short private message.
func ReplyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// ReplyEmbed answers the interaction with an embed visible to everyone.
func ReplyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// UserError translates a domain error into the Russian message shown to
// the user. It reports false for unexpected errors so callers can log
// them instead.
func UserError(err error) (string, bool) {
	var inOther *clan.AlreadyInSubclanError
	var leads *clan.AlreadyLeadsError
	var cooldown *clan.CooldownError
	var notAllowed *clan.ChannelNotAllowedError
	var provErr *clan.ProvisionError

	switch {
	case errors.As(err, &inOther):
		return fmt.Sprintf("❌ Вы уже состоите в склане **%s**.", inOther.Subclan), true
	case errors.As(err, &leads):
		return fmt.Sprintf("❌ Вы уже являетесь лидером склана **%s**.", leads.Subclan), true
	case errors.As(err, &cooldown):
		return fmt.Sprintf("⏳ Вы недавно покинули склан. Подождите ещё **%s**.", giveaway.FormatDuration(cooldown.Remaining)), true
	case errors.As(err, &notAllowed):
		return "❌ Подавать заявку можно только в специальных каналах.", true
	case errors.As(err, &provErr):
		return "❌ Не удалось выполнить операцию на сервере Discord. Попробуйте позже.", true
	}

	messages := map[error]string{
		clan.ErrSubclanNotFound:     "❌ Склан с таким названием не найден.",
		clan.ErrSubclanExists:       "❌ Склан с таким названием уже существует.",
		clan.ErrNotLeader:           "❌ Это может сделать только лидер склана.",
		clan.ErrNotLeaderOrOfficer:  "❌ Это могут делать только лидер и офицеры.",
		clan.ErrOfficerRoleNotSet:   "❌ Роль офицера клана не настроена. Обратитесь к администратору.",
		clan.ErrOfficerRoleRequired: "❌ Создавать скланы могут только офицеры клана.",
		clan.ErrSubclanFull:         "❌ В склане нет свободных мест.",
		clan.ErrAlreadyInThis:       "❌ Этот пользователь уже состоит в склане.",
		clan.ErrLeaderCannotLeave:   "❌ Лидер не может покинуть свой склан. Используйте удаление.",
		clan.ErrCannotKickLeader:    "❌ Лидера склана нельзя исключить.",
		clan.ErrNotInSubclan:        "❌ Этот пользователь не состоит в склане.",
		clan.ErrAlreadyOfficer:      "❌ Этот пользователь уже офицер склана.",
		clan.ErrNotOfficer:          "❌ Этот пользователь не является офицером склана.",
		clan.ErrLeaderRoleImmutable: "❌ Роль лидера нельзя изменять или удалять.",
		clan.ErrRoleNotInSubclan:    "❌ Такой роли в склане нет.",
		clan.ErrCoreChannel:         "❌ Основные каналы склана удалить нельзя.",
		clan.ErrChannelNotInSubclan: "❌ Этот канал не принадлежит склану.",
		clan.ErrApplicationNotFound: "❌ Заявка не найдена.",
		clan.ErrAlreadyApplied:      "❌ Заявка уже подана и ожидает рассмотрения.",
		clan.ErrAlreadyClanMember:   "❌ Вы уже являетесь участником клана.",
		clan.ErrNotClanMember:       "❌ Этот пользователь не состоит в клане.",
		clan.ErrMaxBelowCurrent:     "❌ Новый лимит меньше текущего количества участников.",
	}
	for target, msg := range messages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

// ReplyError answers with the user-facing message for domain errors and
// passes unexpected errors back to the dispatch layer.
func ReplyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	if msg, ok := UserError(err); ok {
		return ReplyEphemeral(s, i, msg)
	}
	return err
}

// Timestamp formats the current moment for embed footers.
func Timestamp() string {
	return time.Now().Format(time.RFC3339)
}
