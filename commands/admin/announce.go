package admin

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
	registry.RegisterCommand(AnnounceCommand)
	registry.RegisterCommand(ClearCommand)
}

var AnnounceCommand = &types.Command{
	Name:        "announce",
	Description: "Опубликовать объявление от имени клана",
	Category:    "Администрирование",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{Name: "title", Description: "Заголовок", Type: discordgo.ApplicationCommandOptionString, Required: true},
		{Name: "text", Description: "Текст объявления", Type: discordgo.ApplicationCommandOptionString, Required: true},
		{Name: "channel", Description: "Куда (по умолчанию канал объявлений)", Type: discordgo.ApplicationCommandOptionChannel},
		{Name: "ping", Description: "Упомянуть @everyone", Type: discordgo.ApplicationCommandOptionBoolean},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		opts := cmdutil.Options(i)
		channelID := d.Store.Settings().AnnouncementChannel
		if ch := opts.Channel(s, "channel"); ch != "" {
			channelID = ch
		}
		if channelID == "" {
			return cmdutil.ReplyEphemeral(s, i, "❌ Канал объявлений не настроен. Укажите канал или настройте его в /settings.")
		}

		content := ""
		if opts.Bool("ping") {
			content = "@everyone"
		}
		res := d.Notify.Channel(channelID, content, &discordgo.MessageEmbed{
			Title:       "📣 " + opts.String("title"),
			Description: opts.String("text"),
			Color:       0x3498DB,
			Footer:      &discordgo.MessageEmbedFooter{Text: "Администрация клана"},
			Timestamp:   cmdutil.Timestamp(),
		})
		if !res.Delivered {
			return cmdutil.ReplyEphemeral(s, i, "❌ Не удалось отправить объявление в канал.")
		}
		return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Объявление опубликовано в <#%s>.", channelID))
	},
}

var ClearCommand = &types.Command{
	Name:        "clear",
	Description: "Удалить последние сообщения в канале",
	Category:    "Администрирование",
	AdminOnly:   true,
	Cooldown:    10 * time.Second,
	Options: []*types.CommandOption{
		{Name: "count", Description: "Сколько сообщений удалить (1-100)", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		count := cmdutil.Options(i).Int("count")
		if count < 1 || count > 100 {
			return cmdutil.ReplyEphemeral(s, i, "❌ Можно удалить от 1 до 100 сообщений за раз.")
		}

		msgs, err := s.ChannelMessages(i.ChannelID, count, "", "", "")
		if err != nil {
			return fmt.Errorf("fetch messages: %v", err)
		}
		ids := make([]string, 0, len(msgs))
		for _, m := range msgs {
			ids = append(ids, m.ID)
		}
		if len(ids) == 1 {
			err = s.ChannelMessageDelete(i.ChannelID, ids[0])
		} else if len(ids) > 1 {
			err = s.ChannelMessagesBulkDelete(i.ChannelID, ids)
		}
		if err != nil {
			return fmt.Errorf("bulk delete: %v", err)
		}
		return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("🧹 Удалено сообщений: %d.", len(ids)))
	},
}
