package tempcmd

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

func init() {
	registry.RegisterCommand(VoiceCommand)
}

var VoiceCommand = &types.Command{
	Name:        "voice",
	Description: "Управление своим временным каналом",
	Category:    "Голосовые каналы",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "name",
			Description: "Переименовать канал",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Новое название", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "limit",
			Description: "Лимит участников (0 — без лимита)",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "limit", Description: "Максимум участников", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
			},
		},
		{
			Name:        "bitrate",
			Description: "Битрейт канала (кбит/с)",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "kbps", Description: "Битрейт, 8-384", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
			},
		},
		{
			Name:        "delete",
			Description: "Удалить свой временный канал",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		channelID, err := currentTempChannel(s, i)
		if err != nil {
			return cmdutil.ReplyEphemeral(s, i, "❌ Вы должны находиться в своём временном голосовом канале.")
		}

		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "name":
			name := opts.String("name")
			if _, err := s.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}); err != nil {
				return fmt.Errorf("rename temp channel: %v", err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Канал переименован в **%s**.", name))
		case "limit":
			limit := opts.Int("limit")
			if limit < 0 || limit > 99 {
				return cmdutil.ReplyEphemeral(s, i, "❌ Лимит должен быть от 0 до 99.")
			}
			if _, err := s.ChannelEdit(channelID, &discordgo.ChannelEdit{UserLimit: limit}); err != nil {
				return fmt.Errorf("set temp channel limit: %v", err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Лимит участников: %d.", limit))
		case "bitrate":
			kbps := opts.Int("kbps")
			if kbps < 8 || kbps > 384 {
				return cmdutil.ReplyEphemeral(s, i, "❌ Битрейт должен быть от 8 до 384 кбит/с.")
			}
			if _, err := s.ChannelEdit(channelID, &discordgo.ChannelEdit{Bitrate: kbps * 1000}); err != nil {
				return fmt.Errorf("set temp channel bitrate: %v", err)
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Битрейт: %d кбит/с.", kbps))
		case "delete":
			if err := cmdutil.ReplyEphemeral(s, i, "✅ Канал удаляется."); err != nil {
				return err
			}
			if _, err := s.ChannelDelete(channelID); err != nil {
				return fmt.Errorf("delete temp channel: %v", err)
			}
			return nil
		}
		return nil
	},
}

// currentTempChannel returns the temp voice channel the invoker is sitting
// in. When the creator map still remembers the channel, only the creator
// may manage it; after a restart the map is empty and sitting inside a
// channel of the temp category is what makes it "yours".
func currentTempChannel(s *discordgo.Session, i *discordgo.InteractionCreate) (string, error) {
	var settings store.TempChannelSettings
	d.Store.View(func(st *store.State) { settings = st.TempChannels })
	if !settings.Enabled || settings.CategoryID == "" {
		return "", fmt.Errorf("temp channels disabled")
	}

	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		return "", err
	}
	actor := cmdutil.Actor(i)
	for _, vs := range guild.VoiceStates {
		if vs.UserID != actor.ID {
			continue
		}
		if vs.ChannelID == settings.CreateChannelID {
			return "", fmt.Errorf("in the create channel")
		}
		ch, err := s.State.Channel(vs.ChannelID)
		if err != nil || ch.ParentID != settings.CategoryID {
			return "", fmt.Errorf("not a temp channel")
		}
		if d.TempOwner != nil {
			if owner, ok := d.TempOwner(vs.ChannelID); ok && owner != actor.ID {
				return "", fmt.Errorf("not the channel owner")
			}
		}
		return vs.ChannelID, nil
	}
	return "", fmt.Errorf("not in voice")
}
