package giveawaycmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/giveaway"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

const entryEmoji = "🎉"

var d *deps.Deps

func Setup(dd *deps.Deps) {
	d = dd
}

func init() {
	registry.RegisterCommand(GiveawayCommand)
}

var GiveawayCommand = &types.Command{
	Name:        "giveaway",
	Description: "Розыгрыши",
	Category:    "Розыгрыши",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "create",
			Description: "Запустить розыгрыш",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "prize", Description: "Приз", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "duration", Description: "Длительность (например 1д 12ч 30м)", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "winners", Description: "Количество победителей", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
				{Name: "description", Description: "Описание", Type: discordgo.ApplicationCommandOptionString},
			},
		},
		{
			Name:        "end",
			Description: "Завершить розыгрыш досрочно",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "message", Description: "ID сообщения розыгрыша", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "cancel",
			Description: "Отменить розыгрыш без победителей",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "message", Description: "ID сообщения розыгрыша", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "reroll",
			Description: "Переопределить победителей завершённого розыгрыша",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "message", Description: "ID сообщения розыгрыша", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "create":
			return runCreate(s, i, opts)
		case "end":
			return runEnd(s, i, opts.String("message"))
		case "cancel":
			return runCancel(s, i, opts.String("message"))
		case "reroll":
			return runReroll(s, i, opts.String("message"))
		}
		return nil
	},
}

func entrants(s *discordgo.Session, channelID, messageID string) ([]string, error) {
	users, err := s.MessageReactions(channelID, messageID, entryEmoji, 100, "", "")
	if err != nil {
		return nil, fmt.Errorf("fetch giveaway entrants: %v", err)
	}
	var out []string
	for _, u := range users {
		if !u.Bot {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

func runCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	prize := opts.String("prize")
	winners := opts.Int("winners")
	description := opts.String("description")

	dur, err := giveaway.ParseDuration(opts.String("duration"))
	if err == giveaway.ErrTooShort {
		return cmdutil.ReplyEphemeral(s, i, "❌ Розыгрыш должен длиться не меньше минуты.")
	}
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Не удалось разобрать длительность. Пример: `1д 12ч 30м`.")
	}
	if winners <= 0 {
		winners = 1
	}

	endTime := time.Now().Add(dur)
	hostID := cmdutil.Actor(i).ID

	embed := &discordgo.MessageEmbed{
		Title:       "🎉 Розыгрыш: " + prize,
		Description: fmt.Sprintf("%s\n\nНажмите %s, чтобы участвовать!\n**Завершение:** <t:%d:R>\n**Победителей:** %d", description, entryEmoji, endTime.Unix(), winners),
		Color:       0xF1C40F,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Организатор"},
		Timestamp:   cmdutil.Timestamp(),
	}
	msg, err := s.ChannelMessageSendEmbed(i.ChannelID, embed)
	if err != nil {
		return err
	}
	if err := s.MessageReactionAdd(i.ChannelID, msg.ID, entryEmoji); err != nil {
		d.Log.Error(fmt.Sprintf("seed giveaway reaction: %v", err))
	}

	err = d.Giveaways.Create(msg.ID, store.Giveaway{
		Prize:       prize,
		Winners:     winners,
		EndTime:     endTime,
		ChannelID:   i.ChannelID,
		GuildID:     i.GuildID,
		HostID:      hostID,
		Description: description,
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Розыгрыш запущен, итоги <t:%d:R>.", endTime.Unix()))
}

func runEnd(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) error {
	g, ok := d.Giveaways.Get(messageID)
	if !ok {
		return cmdutil.ReplyEphemeral(s, i, "❌ Розыгрыш с таким ID не найден.")
	}
	if err := d.Giveaways.MarkEnded(messageID); err != nil {
		if errors.Is(err, giveaway.ErrAlreadyEnded) {
			return cmdutil.ReplyEphemeral(s, i, "❌ Розыгрыш уже завершён.")
		}
		return err
	}

	pool, err := entrants(s, g.ChannelID, messageID)
	if err != nil {
		return err
	}

	winners := d.Giveaways.PickWinners(pool, g.Winners)

	var result string
	if len(winners) == 0 {
		result = "Участников не было."
		d.Notify.Channel(g.ChannelID, fmt.Sprintf("Розыгрыш **%s** завершён — участников не было.", g.Prize), nil)
	} else {
		mentions := make([]string, len(winners))
		for idx, id := range winners {
			mentions[idx] = "<@" + id + ">"
		}
		result = "Победители: " + strings.Join(mentions, ", ")
		d.Notify.Channel(g.ChannelID, fmt.Sprintf("🎉 Розыгрыш **%s** завершён! Победители: %s", g.Prize, strings.Join(mentions, ", ")), nil)
	}

	ended := &discordgo.MessageEmbed{
		Title:       "🏁 Розыгрыш завершён: " + g.Prize,
		Description: result,
		Color:       0x95A5A6,
	}
	if _, err := s.ChannelMessageEditEmbed(g.ChannelID, messageID, ended); err != nil {
		d.Log.Error(fmt.Sprintf("edit giveaway %s message: %v", messageID, err))
	}

	return cmdutil.ReplyEphemeral(s, i, "✅ Розыгрыш завершён.")
}

func runCancel(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) error {
	g, ok := d.Giveaways.Get(messageID)
	if !ok {
		return cmdutil.ReplyEphemeral(s, i, "❌ Розыгрыш с таким ID не найден.")
	}
	if err := d.Giveaways.Cancel(messageID); err != nil {
		return err
	}
	d.Notify.Channel(g.ChannelID, fmt.Sprintf("Розыгрыш **%s** отменён организатором.", g.Prize), nil)
	return cmdutil.ReplyEphemeral(s, i, "✅ Розыгрыш отменён.")
}

func runReroll(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) error {
	g, ok := d.Giveaways.Get(messageID)
	if !ok {
		return cmdutil.ReplyEphemeral(s, i, "❌ Розыгрыш с таким ID не найден.")
	}
	if !g.Ended {
		return cmdutil.ReplyEphemeral(s, i, "❌ Сначала завершите розыгрыш, потом переопределяйте победителей.")
	}

	pool, err := entrants(s, g.ChannelID, messageID)
	if err != nil {
		return err
	}
	winners := d.Giveaways.PickWinners(pool, g.Winners)
	if len(winners) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "❌ Участников не было, переопределять некого.")
	}

	mentions := make([]string, len(winners))
	for idx, id := range winners {
		mentions[idx] = "<@" + id + ">"
	}
	d.Notify.Channel(g.ChannelID, fmt.Sprintf("🎲 Новые победители розыгрыша **%s**: %s", g.Prize, strings.Join(mentions, ", ")), nil)
	return cmdutil.ReplyEphemeral(s, i, "✅ Победители переопределены.")
}
