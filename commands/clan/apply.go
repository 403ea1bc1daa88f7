package clancmd

import (
	"fmt"
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
	registry.RegisterCommand(ApplyCommand)
	registry.RegisterCommand(ApplyPanelCommand)
	registry.RegisterComponent("app_open", handleOpenButton)
	registry.RegisterComponent("app_accept:", handleAcceptButton)
	registry.RegisterComponent("app_reject:", handleRejectButton)
	registry.RegisterModal("app_modal", handleApplyModal)
}

var ApplyCommand = &types.Command{
	Name:        "apply",
	Description: "Подать заявку на вступление в клан",
	Category:    "Клан",
	Cooldown:    10 * time.Second,
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		return openApplyModal(s, i)
	},
}

// ApplyPanelCommand posts the permanent "apply here" button.
var ApplyPanelCommand = &types.Command{
	Name:        "apply-panel",
	Description: "Разместить панель подачи заявок",
	Category:    "Администрирование",
	AdminOnly:   true,
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		embed := &discordgo.MessageEmbed{
			Title:       "📋 Вступление в клан",
			Description: "Нажмите кнопку ниже, чтобы подать заявку на вступление.",
			Color:       0x3498DB,
		}
		_, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Подать заявку", Style: discordgo.PrimaryButton, CustomID: "app_open", Emoji: &discordgo.ComponentEmoji{Name: "📨"}},
				}},
			},
		})
		if err != nil {
			return err
		}
		return cmdutil.ReplyEphemeral(s, i, "✅ Панель заявок размещена.")
	},
}

func handleOpenButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return openApplyModal(s, i)
}

func openApplyModal(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "app_modal",
			Title:    "Заявка на вступление",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "nickname", Label: "Игровой никнейм", Style: discordgo.TextInputShort, Required: true, MaxLength: 64},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "age", Label: "Возраст", Style: discordgo.TextInputShort, Required: true, MaxLength: 8},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "experience", Label: "Игровой опыт", Style: discordgo.TextInputParagraph, Required: true, MaxLength: 512},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "motivation", Label: "Почему вы хотите вступить?", Style: discordgo.TextInputParagraph, Required: true, MaxLength: 1024},
				}},
			},
		},
	})
}

func handleApplyModal(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := cmdutil.Actor(i).ID
	form := clan.ApplicationForm{}

	for _, row := range i.ModalSubmitData().Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			input, ok := c.(*discordgo.TextInput)
			if !ok {
				continue
			}
			switch input.CustomID {
			case "nickname":
				form.Nickname = strings.TrimSpace(input.Value)
			case "age":
				form.Age = strings.TrimSpace(input.Value)
			case "experience":
				form.Experience = input.Value
			case "motivation":
				form.Motivation = input.Value
			}
		}
	}

	if err := d.Apps.Submit(userID, i.ChannelID, form, time.Now()); err != nil {
		return cmdutil.ReplyError(s, i, err)
	}

	postApplicationReview(i.GuildID, userID, form)
	return cmdutil.ReplyEphemeral(s, i, "✅ Ваша заявка отправлена! Ожидайте решения офицеров.")
}

// postApplicationReview shows the application to the officers with the
// decision buttons.
func postApplicationReview(guildID, userID string, form clan.ApplicationForm) {
	settings := d.Store.Settings()
	embed := &discordgo.MessageEmbed{
		Title: "📨 Новая заявка в клан",
		Color: 0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Кандидат", Value: fmt.Sprintf("<@%s>", userID), Inline: true},
			{Name: "Никнейм", Value: form.Nickname, Inline: true},
			{Name: "Возраст", Value: form.Age, Inline: true},
			{Name: "Опыт", Value: form.Experience},
			{Name: "Мотивация", Value: form.Motivation},
		},
		Timestamp: cmdutil.Timestamp(),
	}
	target := settings.LogChannel
	if target == "" {
		target = settings.AnnouncementChannel
	}
	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Принять", Style: discordgo.SuccessButton, CustomID: "app_accept:" + userID},
				discordgo.Button{Label: "Отклонить", Style: discordgo.DangerButton, CustomID: "app_reject:" + userID},
			}},
		},
	}
	if target == "" {
		d.Log.Error("application review channel is not configured")
		return
	}
	sent, err := d.Notify.Session().ChannelMessageSendComplex(target, msg)
	if err != nil {
		d.Log.Error(fmt.Sprintf("post application review: %v", err))
		return
	}

	// Remember which applicant the review message belongs to so stranded
	// reviews can be traced back after a restart.
	if err := d.Store.Update(func(st *store.State) error {
		if st.VerificationMessages[guildID] == nil {
			st.VerificationMessages[guildID] = make(map[string]string)
		}
		st.VerificationMessages[guildID][sent.ID] = userID
		return nil
	}); err != nil {
		d.Log.Error(fmt.Sprintf("record review message: %v", err))
	}
}

// forgetReviewMessage drops the review message bookkeeping once the
// decision is made.
func forgetReviewMessage(guildID, messageID string) {
	err := d.Store.Update(func(st *store.State) error {
		msgs, ok := st.VerificationMessages[guildID]
		if !ok {
			return store.ErrNoChange
		}
		if _, ok := msgs[messageID]; !ok {
			return store.ErrNoChange
		}
		delete(msgs, messageID)
		return nil
	})
	if err != nil && err != store.ErrNoChange {
		d.Log.Error(fmt.Sprintf("forget review message: %v", err))
	}
}

func handleAcceptButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := strings.TrimPrefix(i.MessageComponentData().CustomID, "app_accept:")
	actor := cmdutil.Actor(i)

	app, err := d.Apps.Accept(actor, userID, time.Now())
	if err != nil {
		return cmdutil.ReplyError(s, i, err)
	}

	roles := d.Store.Roles()
	if roles.Member != "" {
		if err := s.GuildMemberRoleAdd(i.GuildID, userID, roles.Member); err != nil {
			d.Log.Error(fmt.Sprintf("grant member role to %s: %v", userID, err))
		}
	}
	if roles.NewMember != "" {
		if err := s.GuildMemberRoleAdd(i.GuildID, userID, roles.NewMember); err != nil {
			d.Log.Error(fmt.Sprintf("grant new member role to %s: %v", userID, err))
		}
	}

	res := d.Notify.DM(userID, &discordgo.MessageEmbed{
		Title:       "🎉 Заявка принята!",
		Description: "Добро пожаловать в клан!",
		Color:       0x2ECC71,
	})
	note := fmt.Sprintf("✅ Заявка **%s** принята <@%s>.", app.Nickname, actor.ID)
	if !res.Delivered {
		note += " (не удалось отправить ЛС кандидату)"
	}
	forgetReviewMessage(i.GuildID, i.Message.ID)
	return finishReview(s, i, note)
}

func handleRejectButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := strings.TrimPrefix(i.MessageComponentData().CustomID, "app_reject:")
	actor := cmdutil.Actor(i)

	app, err := d.Apps.Reject(actor, userID)
	if err != nil {
		return cmdutil.ReplyError(s, i, err)
	}

	res := d.Notify.DM(userID, &discordgo.MessageEmbed{
		Title:       "Заявка отклонена",
		Description: "К сожалению, ваша заявка на вступление в клан была отклонена.",
		Color:       0xE74C3C,
	})
	note := fmt.Sprintf("❌ Заявка **%s** отклонена <@%s>.", app.Nickname, actor.ID)
	if !res.Delivered {
		note += " (не удалось отправить ЛС кандидату)"
	}
	forgetReviewMessage(i.GuildID, i.Message.ID)
	return finishReview(s, i, note)
}

// finishReview replaces the review message, removing the buttons so the
// decision cannot be made twice.
func finishReview(s *discordgo.Session, i *discordgo.InteractionCreate, note string) error {
	embeds := i.Message.Embeds
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    note,
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
}
