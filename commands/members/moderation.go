package members

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
	registry.RegisterCommand(KickCommand)
	registry.RegisterCommand(BanCommand)
}

var KickCommand = &types.Command{
	Name:        "kick",
	Description: "Выгнать участника с сервера",
	Category:    "Модерация",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{Name: "user", Description: "Кого выгнать", Type: discordgo.ApplicationCommandOptionUser, Required: true},
		{Name: "reason", Description: "Причина", Type: discordgo.ApplicationCommandOptionString, Required: true},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		return runRemoval(s, i, false)
	},
}

var BanCommand = &types.Command{
	Name:        "ban",
	Description: "Забанить участника",
	Category:    "Модерация",
	AdminOnly:   true,
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{Name: "user", Description: "Кого забанить", Type: discordgo.ApplicationCommandOptionUser, Required: true},
		{Name: "reason", Description: "Причина", Type: discordgo.ApplicationCommandOptionString, Required: true},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		return runRemoval(s, i, true)
	},
}

func runRemoval(s *discordgo.Session, i *discordgo.InteractionCreate, ban bool) error {
	opts := cmdutil.Options(i)
	user := opts.User(s, i, "user")
	reason := opts.String("reason")
	actor := cmdutil.Actor(i)

	if user.ID == actor.ID {
		return cmdutil.ReplyEphemeral(s, i, "❌ Нельзя применить это к самому себе.")
	}

	verb := "исключены"
	title := "👢 Исключение"
	if ban {
		verb = "забанены"
		title = "🔨 Бан"
	}

	// The DM has to go out before the removal; afterwards there is no
	// shared guild left to deliver it through.
	d.Notify.DM(user.ID, &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Вы были %s с сервера.\n**Причина:** %s", verb, reason),
		Color:       0xE74C3C,
	})

	var err error
	if ban {
		err = s.GuildBanCreateWithReason(i.GuildID, user.ID, reason, 0)
	} else {
		err = s.GuildMemberDeleteWithReason(i.GuildID, user.ID, reason)
	}
	if err != nil {
		return fmt.Errorf("remove member %s: %v", user.ID, err)
	}

	// Membership records don't outlive the person.
	if uerr := d.Store.Update(func(st *store.State) error {
		delete(st.Members, user.ID)
		delete(st.Applications, user.ID)
		delete(st.Activity, user.ID)
		return nil
	}); uerr != nil {
		d.Log.Error(fmt.Sprintf("purge records of %s: %v", user.ID, uerr))
	}

	settings := d.Store.Settings()
	d.Notify.Channel(settings.LogChannel, "", &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("<@%s> — %s.\n**Причина:** %s\n**Модератор:** <@%s>", user.ID, verb, reason, actor.ID),
		Color:       0xE74C3C,
		Timestamp:   cmdutil.Timestamp(),
	})

	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ <@%s> %s. Причина: %s", user.ID, verb, reason))
}
