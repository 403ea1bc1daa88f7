package factions

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/clan"
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
	registry.RegisterCommand(FactionCommand)
	registry.RegisterComponent("faction:", handleJoinButton)
}

var FactionCommand = &types.Command{
	Name:        "faction",
	Description: "Фракции сервера",
	Category:    "Фракции",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "add",
			Description: "Добавить фракцию",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "description", Description: "Описание", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "emoji", Description: "Эмодзи", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "color", Description: "Цвет #RRGGBB", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "edit",
			Description: "Изменить фракцию",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "description", Description: "Новое описание", Type: discordgo.ApplicationCommandOptionString},
				{Name: "emoji", Description: "Новое эмодзи", Type: discordgo.ApplicationCommandOptionString},
				{Name: "color", Description: "Новый цвет #RRGGBB", Type: discordgo.ApplicationCommandOptionString},
			},
		},
		{
			Name:        "remove",
			Description: "Удалить фракцию",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "panel",
			Description: "Разместить панель выбора фракции",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        "list",
			Description: "Список фракций",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
	},
	AdminOnly: false,
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "add":
			return runAdd(s, i, opts)
		case "edit":
			return runEdit(s, i, opts)
		case "remove":
			return runRemove(s, i, opts)
		case "panel":
			return runPanel(s, i)
		case "list":
			return runList(s, i)
		}
		return nil
	},
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func runAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	if !isAdmin(i) {
		return cmdutil.ReplyEphemeral(s, i, "❌ Управлять фракциями могут только администраторы.")
	}
	name := opts.String("name")
	colorHex := opts.String("color")

	color, err := clan.ParseColor(colorHex)
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Неверный формат цвета. Используйте #RRGGBB.")
	}

	role, err := s.GuildRoleCreate(i.GuildID, &discordgo.RoleParams{Name: name, Color: &color})
	if err != nil {
		return fmt.Errorf("create faction role: %v", err)
	}

	err = d.Store.Update(func(st *store.State) error {
		if _, ok := st.Factions.Factions[name]; ok {
			return fmt.Errorf("faction exists")
		}
		st.Factions.Enabled = true
		st.Factions.Factions[name] = &store.Faction{
			Name:        name,
			Description: opts.String("description"),
			Emoji:       opts.String("emoji"),
			RoleID:      role.ID,
			Color:       colorHex,
		}
		return nil
	})
	if err != nil {
		if delErr := s.GuildRoleDelete(i.GuildID, role.ID); delErr != nil {
			d.Log.Error(fmt.Sprintf("delete orphan faction role %s: %v", role.ID, delErr))
		}
		return cmdutil.ReplyEphemeral(s, i, "❌ Фракция с таким названием уже существует.")
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Фракция **%s** создана с ролью <@&%s>.", name, role.ID))
}

func runEdit(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	if !isAdmin(i) {
		return cmdutil.ReplyEphemeral(s, i, "❌ Управлять фракциями могут только администраторы.")
	}
	name := opts.String("name")
	colorHex := opts.String("color")

	color := -1
	if colorHex != "" {
		c, err := clan.ParseColor(colorHex)
		if err != nil {
			return cmdutil.ReplyEphemeral(s, i, "❌ Неверный формат цвета. Используйте #RRGGBB.")
		}
		color = c
	}

	var roleID string
	err := d.Store.Update(func(st *store.State) error {
		f, ok := st.Factions.Factions[name]
		if !ok {
			return fmt.Errorf("not found")
		}
		if desc := opts.String("description"); desc != "" {
			f.Description = desc
		}
		if emoji := opts.String("emoji"); emoji != "" {
			f.Emoji = emoji
		}
		if colorHex != "" {
			f.Color = colorHex
		}
		roleID = f.RoleID
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Фракция не найдена.")
	}
	if color >= 0 && roleID != "" {
		if _, err := s.GuildRoleEdit(i.GuildID, roleID, &discordgo.RoleParams{Name: name, Color: &color}); err != nil {
			d.Log.Error(fmt.Sprintf("recolor faction role %s: %v", roleID, err))
		}
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Фракция **%s** обновлена.", name))
}

func runRemove(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	if !isAdmin(i) {
		return cmdutil.ReplyEphemeral(s, i, "❌ Управлять фракциями могут только администраторы.")
	}
	name := opts.String("name")

	var roleID string
	err := d.Store.Update(func(st *store.State) error {
		f, ok := st.Factions.Factions[name]
		if !ok {
			return fmt.Errorf("not found")
		}
		roleID = f.RoleID
		delete(st.Factions.Factions, name)
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Фракция не найдена.")
	}
	if roleID != "" {
		if err := s.GuildRoleDelete(i.GuildID, roleID); err != nil {
			d.Log.Error(fmt.Sprintf("delete faction role %s: %v", roleID, err))
		}
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Фракция **%s** удалена.", name))
}

func runPanel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !isAdmin(i) {
		return cmdutil.ReplyEphemeral(s, i, "❌ Управлять фракциями могут только администраторы.")
	}

	factions := sortedFactions()
	if len(factions) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "❌ Сначала добавьте хотя бы одну фракцию.")
	}

	var b strings.Builder
	var buttons []discordgo.MessageComponent
	for _, f := range factions {
		fmt.Fprintf(&b, "%s **%s** — %s\n", f.Emoji, f.Name, f.Description)
		buttons = append(buttons, discordgo.Button{
			Label:    f.Name,
			Style:    discordgo.SecondaryButton,
			CustomID: "faction:" + f.Name,
			Emoji:    &discordgo.ComponentEmoji{Name: f.Emoji},
		})
	}

	msg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "⚔️ Выбор фракции",
			Description: b.String(),
			Color:       0x9B59B6,
		}},
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}},
	})
	if err != nil {
		return err
	}

	err = d.Store.Update(func(st *store.State) error {
		st.Factions.MessageID = msg.ID
		st.Factions.ChannelID = msg.ChannelID
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Панель фракций размещена.")
}

func runList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	factions := sortedFactions()
	if len(factions) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "Фракций пока нет.")
	}
	var b strings.Builder
	for _, f := range factions {
		fmt.Fprintf(&b, "%s **%s** — %s\n", f.Emoji, f.Name, f.Description)
	}
	return cmdutil.ReplyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Фракции",
		Description: b.String(),
		Color:       0x9B59B6,
	})
}

func sortedFactions() []store.Faction {
	var factions []store.Faction
	d.Store.View(func(st *store.State) {
		for _, f := range st.Factions.Factions {
			factions = append(factions, *f)
		}
	})
	sort.Slice(factions, func(a, b int) bool { return factions[a].Name < factions[b].Name })
	return factions
}

// handleJoinButton swaps the member onto the chosen faction role. One
// faction per member: every other faction role is removed first.
func handleJoinButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	name := strings.TrimPrefix(i.MessageComponentData().CustomID, "faction:")
	userID := cmdutil.Actor(i).ID

	var chosen store.Faction
	var others []string
	var found bool
	d.Store.View(func(st *store.State) {
		for fname, f := range st.Factions.Factions {
			if fname == name {
				chosen = *f
				found = true
			} else {
				others = append(others, f.RoleID)
			}
		}
	})
	if !found {
		return cmdutil.ReplyEphemeral(s, i, "❌ Эта фракция больше не существует.")
	}

	for _, roleID := range others {
		if roleID == "" {
			continue
		}
		if err := s.GuildMemberRoleRemove(i.GuildID, userID, roleID); err != nil {
			d.Log.Debug(fmt.Sprintf("remove faction role %s from %s: %v", roleID, userID, err))
		}
	}
	if err := s.GuildMemberRoleAdd(i.GuildID, userID, chosen.RoleID); err != nil {
		return fmt.Errorf("grant faction role: %v", err)
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("%s Вы вступили во фракцию **%s**!", chosen.Emoji, chosen.Name))
}
