package members

import (
	"fmt"
	"sort"
	"strings"
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
	registry.RegisterCommand(MembersCommand)
	registry.RegisterCommand(MemberInfoCommand)
}

var MembersCommand = &types.Command{
	Name:        "members",
	Description: "Список участников клана",
	Category:    "Клан",
	Cooldown:    10 * time.Second,
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		type row struct {
			id     string
			joined time.Time
		}
		var rows []row
		d.Store.View(func(st *store.State) {
			for id, m := range st.Members {
				rows = append(rows, row{id: id, joined: m.JoinedAt})
			}
		})
		if len(rows) == 0 {
			return cmdutil.ReplyEphemeral(s, i, "В клане пока нет участников.")
		}
		sort.Slice(rows, func(a, b int) bool { return rows[a].joined.Before(rows[b].joined) })

		var b strings.Builder
		for idx, r := range rows {
			fmt.Fprintf(&b, "%d. <@%s> — в клане с <t:%d:D>\n", idx+1, r.id, r.joined.Unix())
			if idx == 29 && len(rows) > 30 {
				fmt.Fprintf(&b, "… и ещё %d", len(rows)-30)
				break
			}
		}
		return cmdutil.ReplyEmbed(s, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("👥 Участники клана (%d)", len(rows)),
			Description: b.String(),
			Color:       0x3498DB,
			Timestamp:   cmdutil.Timestamp(),
		})
	},
}

var MemberInfoCommand = &types.Command{
	Name:        "member-info",
	Description: "Информация об участнике клана",
	Category:    "Клан",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{Name: "user", Description: "Участник", Type: discordgo.ApplicationCommandOptionUser, Required: true},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		user := cmdutil.Options(i).User(s, i, "user")
		m, ok := d.Store.Member(user.ID)
		if !ok {
			return cmdutil.ReplyEphemeral(s, i, "❌ Этот пользователь не состоит в клане.")
		}

		embed := &discordgo.MessageEmbed{
			Title:     "Участник клана",
			Color:     0x3498DB,
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Пользователь", Value: user.Mention(), Inline: true},
				{Name: "В клане с", Value: fmt.Sprintf("<t:%d:D>", m.JoinedAt.Unix()), Inline: true},
				{Name: "Принят", Value: fmt.Sprintf("<@%s>", m.AcceptedBy), Inline: true},
			},
			Timestamp: cmdutil.Timestamp(),
		}
		if name, ok := d.Store.SubclanOf(user.ID); ok {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Склан", Value: name, Inline: true})
		}
		warnings := d.Store.WarningsFor(user.ID)
		if len(warnings) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Предупреждения", Value: fmt.Sprintf("%d", len(warnings)), Inline: true,
			})
		}
		return cmdutil.ReplyEmbed(s, i, embed)
	},
}
