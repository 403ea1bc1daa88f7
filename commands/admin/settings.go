package admin

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
	registry.RegisterCommand(SettingsCommand)
	registry.RegisterCommand(RolesCommand)
}

var SettingsCommand = &types.Command{
	Name:        "settings",
	Description: "Настройки сервера",
	Category:    "Администрирование",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "channels",
			Description: "Настроить каналы",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "welcome", Description: "Канал приветствий", Type: discordgo.ApplicationCommandOptionChannel},
				{Name: "announcements", Description: "Канал объявлений", Type: discordgo.ApplicationCommandOptionChannel},
				{Name: "log", Description: "Канал логов", Type: discordgo.ApplicationCommandOptionChannel},
			},
		},
		{
			Name:        "welcome-message",
			Description: "Текст приветствия ({user} — упоминание)",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "text", Description: "Текст", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "auto-role",
			Description: "Роль, выдаваемая при входе",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "role", Description: "Роль", Type: discordgo.ApplicationCommandOptionRole, Required: true},
			},
		},
		{
			Name:        "limits",
			Description: "Пороговые значения",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "inactivity-days", Description: "Дней до пометки неактивным", Type: discordgo.ApplicationCommandOptionInteger},
				{Name: "max-warnings", Description: "Лимит предупреждений", Type: discordgo.ApplicationCommandOptionInteger},
				{Name: "reminder-hours", Description: "За сколько часов напоминать о событиях", Type: discordgo.ApplicationCommandOptionInteger},
			},
		},
		{
			Name:        "apply-channel",
			Description: "Разрешить или запретить канал для заявок",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "channel", Description: "Канал", Type: discordgo.ApplicationCommandOptionChannel, Required: true},
				{Name: "allowed", Description: "Разрешить", Type: discordgo.ApplicationCommandOptionBoolean, Required: true},
			},
		},
		{
			Name:        "view",
			Description: "Показать текущие настройки",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "channels":
			return runChannels(s, i, opts)
		case "welcome-message":
			return setWelcomeMessage(s, i, opts.String("text"))
		case "auto-role":
			return setAutoRole(s, i, opts.Role(s, i, "role"))
		case "limits":
			return runLimits(s, i, opts)
		case "apply-channel":
			return runApplyChannel(s, i, opts)
		case "view":
			return runView(s, i)
		}
		return nil
	},
}

func runChannels(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	welcome := opts.Channel(s, "welcome")
	announcements := opts.Channel(s, "announcements")
	logCh := opts.Channel(s, "log")

	err := d.Store.Update(func(st *store.State) error {
		if welcome != "" {
			st.Settings.WelcomeChannel = welcome
		}
		if announcements != "" {
			st.Settings.AnnouncementChannel = announcements
		}
		if logCh != "" {
			st.Settings.LogChannel = logCh
		}
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Каналы обновлены.")
}

func setWelcomeMessage(s *discordgo.Session, i *discordgo.InteractionCreate, text string) error {
	err := d.Store.Update(func(st *store.State) error {
		st.Settings.WelcomeMessage = text
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Текст приветствия обновлён.")
}

func setAutoRole(s *discordgo.Session, i *discordgo.InteractionCreate, roleID string) error {
	err := d.Store.Update(func(st *store.State) error {
		st.Settings.AutoRole = roleID
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Автороль: <@&%s>.", roleID))
}

func runLimits(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	err := d.Store.Update(func(st *store.State) error {
		if v := opts.Int("inactivity-days"); v > 0 {
			st.Settings.InactivityDays = v
		}
		if v := opts.Int("max-warnings"); v > 0 {
			st.Settings.MaxWarnings = v
		}
		if v := opts.Int("reminder-hours"); v > 0 {
			st.Settings.EventReminderHours = v
		}
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Лимиты обновлены.")
}

func runApplyChannel(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	channelID := opts.Channel(s, "channel")
	allowed := opts.Bool("allowed")

	err := d.Store.Update(func(st *store.State) error {
		filtered := st.Settings.ApplyChannels[:0]
		for _, ch := range st.Settings.ApplyChannels {
			if ch != channelID {
				filtered = append(filtered, ch)
			}
		}
		st.Settings.ApplyChannels = filtered
		if allowed {
			st.Settings.ApplyChannels = append(st.Settings.ApplyChannels, channelID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if allowed {
		return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Заявки разрешены в <#%s>.", channelID))
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Канал <#%s> исключён из списка заявок.", channelID))
}

func runView(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	settings := d.Store.Settings()
	roles := d.Store.Roles()

	ch := func(id string) string {
		if id == "" {
			return "не задан"
		}
		return "<#" + id + ">"
	}
	role := func(id string) string {
		if id == "" {
			return "не задана"
		}
		return "<@&" + id + ">"
	}

	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Настройки сервера",
		Color: 0x2B2D31,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Канал приветствий", Value: ch(settings.WelcomeChannel), Inline: true},
			{Name: "Канал объявлений", Value: ch(settings.AnnouncementChannel), Inline: true},
			{Name: "Канал логов", Value: ch(settings.LogChannel), Inline: true},
			{Name: "Автороль", Value: role(settings.AutoRole), Inline: true},
			{Name: "Дней до неактивности", Value: fmt.Sprintf("%d", settings.InactivityDays), Inline: true},
			{Name: "Лимит предупреждений", Value: fmt.Sprintf("%d", settings.MaxWarnings), Inline: true},
			{Name: "Роль лидера", Value: role(roles.Leader), Inline: true},
			{Name: "Роль офицера", Value: role(roles.Officer), Inline: true},
			{Name: "Роль участника", Value: role(roles.Member), Inline: true},
		},
		Timestamp: cmdutil.Timestamp(),
	}
	return cmdutil.ReplyEmbed(s, i, embed)
}

var RolesCommand = &types.Command{
	Name:        "clan-roles",
	Description: "Настроить роли клана",
	Category:    "Администрирование",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{Name: "leader", Description: "Роль лидера клана", Type: discordgo.ApplicationCommandOptionRole},
		{Name: "officer", Description: "Роль офицера клана", Type: discordgo.ApplicationCommandOptionRole},
		{Name: "member", Description: "Роль участника клана", Type: discordgo.ApplicationCommandOptionRole},
		{Name: "applicant", Description: "Роль кандидата", Type: discordgo.ApplicationCommandOptionRole},
		{Name: "new-member", Description: "Роль новичка", Type: discordgo.ApplicationCommandOptionRole},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		opts := cmdutil.Options(i)
		err := d.Store.Update(func(st *store.State) error {
			if r := opts.Role(s, i, "leader"); r != "" {
				st.Roles.Leader = r
			}
			if r := opts.Role(s, i, "officer"); r != "" {
				st.Roles.Officer = r
			}
			if r := opts.Role(s, i, "member"); r != "" {
				st.Roles.Member = r
			}
			if r := opts.Role(s, i, "applicant"); r != "" {
				st.Roles.Applicant = r
			}
			if r := opts.Role(s, i, "new-member"); r != "" {
				st.Roles.NewMember = r
			}
			return nil
		})
		if err != nil {
			return err
		}
		return cmdutil.ReplyEphemeral(s, i, "✅ Роли клана обновлены.")
	},
}
