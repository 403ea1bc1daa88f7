package subclan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/confirm"
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
	registry.RegisterCommand(SubclanCommand)
	registry.RegisterComponent("subclan_confirm:", handleConfirmButton)
	registry.RegisterComponent("subclan_cancel:", handleCancelButton)
}

var SubclanCommand = &types.Command{
	Name:        "subclan",
	Description: "Управление скланами",
	Category:    "Скланы",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "create",
			Description: "Создать новый склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "description", Description: "Описание склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "max", Description: "Максимум участников", Type: discordgo.ApplicationCommandOptionInteger},
			},
		},
		{
			Name:        "delete",
			Description: "Удалить свой склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "leave",
			Description: "Покинуть склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "apply",
			Description: "Подать заявку в склан",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "reason", Description: "Почему вы хотите вступить", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "info",
			Description: "Информация о склане",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "name", Description: "Название склана", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "list",
			Description: "Список всех скланов",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "create":
			return runCreate(s, i, opts)
		case "delete":
			return runDelete(s, i, opts)
		case "leave":
			return runLeave(s, i, opts)
		case "apply":
			return runApply(s, i, opts)
		case "info":
			return runInfo(s, i, opts)
		case "list":
			return runList(s, i)
		}
		return nil
	},
}

func runCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	name := strings.TrimSpace(opts.String("name"))
	description := opts.String("description")
	max := opts.Int("max")

	if name == "" {
		return cmdutil.ReplyEphemeral(s, i, "❌ Название склана не может быть пустым.")
	}

	// Provisioning creates several channels and roles, so answer late.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	sc, err := d.Lifecycle.Create(cmdutil.Actor(i), name, description, max, time.Now())
	if err != nil {
		msg, ok := cmdutil.UserError(err)
		if !ok {
			return err
		}
		_, editErr := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg})
		return editErr
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚔️ Склан создан!",
		Description: fmt.Sprintf("**%s**\n%s", name, sc.Description),
		Color:       0x2ECC71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Лидер", Value: fmt.Sprintf("<@%s>", sc.CreatedBy), Inline: true},
			{Name: "Лимит участников", Value: fmt.Sprintf("%d", sc.MaxMembers), Inline: true},
		},
		Timestamp: cmdutil.Timestamp(),
	}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

// runDelete and runLeave are destructive, so both go through the
// confirmation prompt.
func runDelete(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	name := opts.String("name")
	actor := cmdutil.Actor(i)

	sc, ok := d.Store.Subclan(name)
	if !ok {
		return cmdutil.ReplyEphemeral(s, i, "❌ Склан с таким названием не найден.")
	}
	if sc.CreatedBy != actor.ID {
		return cmdutil.ReplyEphemeral(s, i, "❌ Это может сделать только лидер склана.")
	}

	return promptConfirm(s, i,
		fmt.Sprintf("Вы уверены, что хотите удалить склан **%s**? Все каналы и роли будут удалены безвозвратно.", name),
		func() (string, error) {
			if err := d.Lifecycle.Delete(actor, name); err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Склан **%s** удалён.", name), nil
		})
}

func runLeave(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	name := opts.String("name")
	actor := cmdutil.Actor(i)

	return promptConfirm(s, i,
		fmt.Sprintf("Вы уверены, что хотите покинуть склан **%s**? Повторное вступление будет недоступно 24 часа.", name),
		func() (string, error) {
			if err := d.Lifecycle.Leave(actor, name, time.Now()); err != nil {
				return "", err
			}
			return fmt.Sprintf("👋 Вы покинули склан **%s**.", name), nil
		})
}

// promptConfirm shows the yes/no buttons and registers the pending
// confirmation. The action runs only on an explicit confirm inside the
// prompt window.
func promptConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, question string, action func() (string, error)) error {
	token := uuid.New().String()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "⚠️ Подтверждение",
				Description: question,
				Color:       0xE67E22,
			}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Подтвердить", Style: discordgo.DangerButton, CustomID: "subclan_confirm:" + token},
					discordgo.Button{Label: "Отмена", Style: discordgo.SecondaryButton, CustomID: "subclan_cancel:" + token},
				}},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return err
	}

	d.Confirm.Begin(token, confirm.DefaultTTL, func(o confirm.Outcome) {
		var content string
		switch o {
		case confirm.Confirmed:
			result, err := action()
			if err != nil {
				if msg, ok := cmdutil.UserError(err); ok {
					content = msg
				} else {
					d.Log.Error(fmt.Sprintf("confirmed action failed: %v", err))
					content = "❌ Произошла ошибка при выполнении операции."
				}
			} else {
				content = result
			}
		case confirm.Cancelled:
			content = "Действие отменено."
		case confirm.Expired:
			content = "⌛ Время подтверждения истекло."
		}
		empty := []discordgo.MessageComponent{}
		noEmbeds := []*discordgo.MessageEmbed{}
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content:    &content,
			Components: &empty,
			Embeds:     &noEmbeds,
		}); err != nil {
			d.Log.Error(fmt.Sprintf("edit confirmation message: %v", err))
		}
	})
	return nil
}

func handleConfirmButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return resolveButton(s, i, "subclan_confirm:", true)
}

func handleCancelButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return resolveButton(s, i, "subclan_cancel:", false)
}

func resolveButton(s *discordgo.Session, i *discordgo.InteractionCreate, prefix string, confirmed bool) error {
	token := strings.TrimPrefix(i.MessageComponentData().CustomID, prefix)
	if !d.Confirm.Resolve(token, confirmed) {
		return cmdutil.ReplyEphemeral(s, i, "⌛ Это подтверждение уже недействительно.")
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func runApply(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	name := opts.String("name")
	reason := opts.String("reason")
	actor := cmdutil.Actor(i)

	if err := d.Lifecycle.Apply(actor, name, reason, time.Now()); err != nil {
		return cmdutil.ReplyError(s, i, err)
	}

	if sc, ok := d.Store.Subclan(name); ok {
		d.Notify.Channel(sc.Channels.General, "", &discordgo.MessageEmbed{
			Title:       "📨 Новая заявка в склан",
			Description: fmt.Sprintf("<@%s> хочет вступить.\n**Причина:** %s", actor.ID, reason),
			Color:       0x3498DB,
		})
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Заявка в склан **%s** отправлена.", name))
}

func runInfo(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	name := opts.String("name")
	sc, ok := d.Store.Subclan(name)
	if !ok {
		return cmdutil.ReplyEphemeral(s, i, "❌ Склан с таким названием не найден.")
	}

	members := make([]string, len(sc.Members))
	for idx, id := range sc.Members {
		members[idx] = fmt.Sprintf("<@%s>", id)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚔️ " + name,
		Description: sc.Description,
		Color:       0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Лидер", Value: fmt.Sprintf("<@%s>", sc.CreatedBy), Inline: true},
			{Name: "Участники", Value: fmt.Sprintf("%d/%d", len(sc.Members), sc.MaxMembers), Inline: true},
			{Name: "Создан", Value: fmt.Sprintf("<t:%d:D>", sc.CreatedAt.Unix()), Inline: true},
			{Name: "Состав", Value: strings.Join(members, ", ")},
		},
		Timestamp: cmdutil.Timestamp(),
	}
	if len(sc.Applications) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Заявок в ожидании", Value: fmt.Sprintf("%d", len(sc.Applications)), Inline: true,
		})
	}
	return cmdutil.ReplyEmbed(s, i, embed)
}

func runList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	type row struct {
		name    string
		members int
		max     int
	}
	var rows []row
	d.Store.View(func(st *store.State) {
		for name, sc := range st.Subclans {
			rows = append(rows, row{name: name, members: len(sc.Members), max: sc.MaxMembers})
		}
	})
	sort.Slice(rows, func(a, b int) bool { return rows[a].name < rows[b].name })

	if len(rows) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "Пока нет ни одного склана.")
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "⚔️ **%s** — %d/%d участников\n", r.name, r.members, r.max)
	}
	return cmdutil.ReplyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Скланы",
		Description: b.String(),
		Color:       0x3498DB,
	})
}
