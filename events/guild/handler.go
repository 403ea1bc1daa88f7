package guild

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/store"
)

// Handler reacts to members joining and leaving the guild.
type Handler struct {
	d *deps.Deps
}

func NewHandler(d *deps.Deps) *Handler {
	return &Handler{d: d}
}

// HandleMemberAdd greets the newcomer and hands out the auto role.
func (h *Handler) HandleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	settings := h.d.Store.Settings()

	if settings.AutoRole != "" {
		if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, settings.AutoRole); err != nil {
			h.d.Log.Error(fmt.Sprintf("auto role for %s: %v", m.User.ID, err))
		}
	}

	if settings.WelcomeChannel == "" {
		return
	}
	message := strings.ReplaceAll(settings.WelcomeMessage, "{user}", m.User.Mention())
	embed := &discordgo.MessageEmbed{
		Title:       "Новый участник!",
		Description: message,
		Color:       0x2ECC71,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	h.d.Notify.Channel(settings.WelcomeChannel, m.User.Mention(), embed)
}

// HandleMemberRemove cleans up every record the departed user left
// behind: clan membership, pending applications and subclan memberships.
func (h *Handler) HandleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	userID := m.User.ID

	affected, err := h.d.Lifecycle.HandleMemberRemove(userID)
	if err != nil {
		h.d.Log.Error(fmt.Sprintf("member remove cleanup for %s: %v", userID, err))
	}
	for _, name := range affected {
		if sc, ok := h.d.Store.Subclan(name); ok {
			h.d.Notify.Channel(sc.Channels.General, "", &discordgo.MessageEmbed{
				Description: fmt.Sprintf("**%s** покинул сервер и был исключён из склана.", m.User.Username),
				Color:       0xE67E22,
			})
		}
	}

	err = h.d.Store.Update(func(st *store.State) error {
		delete(st.Members, userID)
		delete(st.Applications, userID)
		delete(st.Activity, userID)
		return nil
	})
	if err != nil {
		h.d.Log.Error(fmt.Sprintf("member remove record cleanup for %s: %v", userID, err))
		return
	}

	settings := h.d.Store.Settings()
	h.d.Notify.Channel(settings.LogChannel, "", &discordgo.MessageEmbed{
		Description: fmt.Sprintf("**%s** покинул сервер.", m.User.Username),
		Color:       0x95A5A6,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}
