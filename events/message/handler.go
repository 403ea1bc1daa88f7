package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/automod"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/store"
)

// activityFlush limits how often a member's last-seen timestamp hits the
// disk.
const activityFlush = 5 * time.Minute

type Handler struct {
	d *deps.Deps
}

func NewHandler(d *deps.Deps) *Handler {
	return &Handler{d: d}
}

// HandleMessageCreate runs the content filters, credits message XP and
// refreshes the author's last-seen timestamp.
func (h *Handler) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	var roleIDs []string
	if m.Member != nil {
		roleIDs = m.Member.Roles
	}

	var settings store.AutomodSettings
	h.d.Store.View(func(st *store.State) { settings = st.Automod })

	switch automod.Check(settings, m.Content, m.ChannelID, roleIDs) {
	case automod.BlockInvite:
		h.deleteAndWarn(s, m, "Приглашения на другие серверы запрещены.")
		return
	case automod.BlockURL:
		h.deleteAndWarn(s, m, "Ссылки в этом канале запрещены.")
		return
	}

	h.touchActivity(m.Author.ID)

	up, err := h.d.Levels.AwardMessageXP(m.Author.ID, time.Now())
	if err != nil {
		h.d.Log.Error(fmt.Sprintf("award message xp for %s: %v", m.Author.ID, err))
		return
	}
	if up != nil {
		h.announceLevelUp(s, m.GuildID, m.ChannelID, m.Author, up.NewLevel, up.RewardRole)
	}
}

func (h *Handler) deleteAndWarn(s *discordgo.Session, m *discordgo.MessageCreate, reason string) {
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		h.d.Log.Error(fmt.Sprintf("automod delete message %s: %v", m.ID, err))
		return
	}
	warn, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("%s, %s", m.Author.Mention(), reason))
	if err != nil {
		return
	}
	time.AfterFunc(10*time.Second, func() {
		s.ChannelMessageDelete(m.ChannelID, warn.ID)
	})
}

func (h *Handler) touchActivity(userID string) {
	now := time.Now()
	err := h.d.Store.Update(func(st *store.State) error {
		if _, ok := st.Members[userID]; !ok {
			return store.ErrNoChange
		}
		if last, ok := st.Activity[userID]; ok && now.Sub(last) < activityFlush {
			return store.ErrNoChange
		}
		st.Activity[userID] = now
		return nil
	})
	if err != nil && err != store.ErrNoChange {
		h.d.Log.Error(fmt.Sprintf("record activity for %s: %v", userID, err))
	}
}

func (h *Handler) announceLevelUp(s *discordgo.Session, guildID, channelID string, user *discordgo.User, level int, rewardRole string) {
	if rewardRole != "" && guildID != "" {
		if err := s.GuildMemberRoleAdd(guildID, user.ID, rewardRole); err != nil {
			h.d.Log.Error(fmt.Sprintf("grant level reward to %s: %v", user.ID, err))
		}
	}

	var lv store.LevelingState
	h.d.Store.View(func(st *store.State) { lv = st.Leveling })
	if !lv.AnnounceEnabled {
		return
	}
	target := lv.AnnounceChannel
	if target == "" {
		target = channelID
	}
	text := fmt.Sprintf("🎉 %s достиг **%d уровня**!", user.Mention(), level)
	if rewardRole != "" {
		text += fmt.Sprintf(" Награда: <@&%s>", rewardRole)
	}
	h.d.Notify.Channel(target, strings.TrimSpace(text), nil)
}
