package levelingcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/leveling"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

var d *deps.Deps

func Setup(dd *deps.Deps) {
	d = dd
}

func init() {
	registry.RegisterCommand(RankCommand)
	registry.RegisterCommand(TopCommand)
	registry.RegisterCommand(LevelSettingsCommand)
}

var RankCommand = &types.Command{
	Name:        "rank",
	Description: "Ваш уровень и опыт",
	Category:    "Уровни",
	Cooldown:    10 * time.Second,
	Options: []*types.CommandOption{
		{Name: "user", Description: "Чей уровень показать", Type: discordgo.ApplicationCommandOptionUser},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		user := cmdutil.Options(i).User(s, i, "user")
		if user == nil {
			if i.Member != nil {
				user = i.Member.User
			} else {
				user = i.User
			}
		}

		u, ok := d.Levels.User(user.ID)
		if !ok {
			return cmdutil.ReplyEphemeral(s, i, "У этого пользователя пока нет опыта.")
		}

		into, needed := leveling.Progress(u.XP, u.Level)
		embed := &discordgo.MessageEmbed{
			Title:     fmt.Sprintf("📊 Уровень %s", user.Username),
			Color:     0x9B59B6,
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Уровень", Value: fmt.Sprintf("%d", u.Level), Inline: true},
				{Name: "Опыт", Value: fmt.Sprintf("%d/%d", into, needed), Inline: true},
				{Name: "Сообщений", Value: fmt.Sprintf("%d", u.TotalMessages), Inline: true},
				{Name: "В голосовых", Value: fmt.Sprintf("%.0f мин", u.VoiceMinutes), Inline: true},
			},
			Timestamp: cmdutil.Timestamp(),
		}
		return cmdutil.ReplyEmbed(s, i, embed)
	},
}

var TopCommand = &types.Command{
	Name:        "top",
	Description: "Таблица лидеров по опыту",
	Category:    "Уровни",
	Cooldown:    10 * time.Second,
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		entries := d.Levels.Top(10)
		if len(entries) == 0 {
			return cmdutil.ReplyEphemeral(s, i, "Таблица лидеров пока пуста.")
		}

		medals := []string{"🥇", "🥈", "🥉"}
		var b strings.Builder
		for idx, e := range entries {
			marker := fmt.Sprintf("%d.", idx+1)
			if idx < len(medals) {
				marker = medals[idx]
			}
			fmt.Fprintf(&b, "%s <@%s> — уровень %d, %d XP\n", marker, e.UserID, e.User.Level, e.User.XP)
		}
		return cmdutil.ReplyEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "🏆 Таблица лидеров",
			Description: b.String(),
			Color:       0xF1C40F,
			Timestamp:   cmdutil.Timestamp(),
		})
	},
}

var LevelSettingsCommand = &types.Command{
	Name:        "level-settings",
	Description: "Настройки системы уровней",
	Category:    "Администрирование",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "general",
			Description: "Основные параметры",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "enabled", Description: "Включить систему уровней", Type: discordgo.ApplicationCommandOptionBoolean},
				{Name: "xp-message", Description: "Опыт за сообщение", Type: discordgo.ApplicationCommandOptionInteger},
				{Name: "xp-voice", Description: "Опыт за минуту в голосовом", Type: discordgo.ApplicationCommandOptionInteger},
				{Name: "announce", Description: "Объявлять о новых уровнях", Type: discordgo.ApplicationCommandOptionBoolean},
				{Name: "channel", Description: "Канал объявлений об уровнях", Type: discordgo.ApplicationCommandOptionChannel},
			},
		},
		{
			Name:        "reward",
			Description: "Наградная роль за уровень",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "level", Description: "Уровень", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
				{Name: "role", Description: "Роль (пусто — убрать награду)", Type: discordgo.ApplicationCommandOptionRole},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "general":
			return runGeneral(s, i, opts)
		case "reward":
			level := opts.Int("level")
			roleID := opts.Role(s, i, "role")
			if err := d.Levels.SetReward(level, roleID); err != nil {
				return err
			}
			if roleID == "" {
				return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Награда за уровень %d убрана.", level))
			}
			return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ За уровень %d теперь выдаётся <@&%s>.", level, roleID))
		}
		return nil
	},
}

func runGeneral(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	err := d.Store.Update(func(st *store.State) error {
		if o, ok := opts["enabled"]; ok {
			st.Leveling.Enabled = o.BoolValue()
		}
		if v := opts.Int("xp-message"); v > 0 {
			st.Leveling.XPPerMessage = v
		}
		if v := opts.Int("xp-voice"); v > 0 {
			st.Leveling.XPPerVoiceMinute = v
		}
		if o, ok := opts["announce"]; ok {
			st.Leveling.AnnounceEnabled = o.BoolValue()
		}
		if ch := opts.Channel(s, "channel"); ch != "" {
			st.Leveling.AnnounceChannel = ch
		}
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Настройки уровней обновлены.")
}
