package voice

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/store"
)

// Handler owns the temporary voice channels and feeds voice sessions into
// the leveling service.
type Handler struct {
	d *deps.Deps

	mu sync.Mutex
	// temp maps a created channel id to its owner.
	temp map[string]string
}

func NewHandler(d *deps.Deps) *Handler {
	return &Handler{d: d, temp: make(map[string]string)}
}

// HandleVoiceStateUpdate tracks joins and leaves for XP and manages the
// create-by-joining temp channel flow.
func (h *Handler) HandleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.Member != nil && v.Member.User != nil && v.Member.User.Bot {
		return
	}
	userID := v.UserID
	now := time.Now()

	joined := v.ChannelID != "" && (v.BeforeUpdate == nil || v.BeforeUpdate.ChannelID == "")
	left := v.ChannelID == "" && v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != ""

	if joined {
		if err := h.d.Levels.VoiceJoined(userID, now); err != nil {
			h.d.Log.Error(fmt.Sprintf("voice join for %s: %v", userID, err))
		}
	}
	if left {
		up, err := h.d.Levels.VoiceLeft(userID, now)
		if err != nil {
			h.d.Log.Error(fmt.Sprintf("voice leave for %s: %v", userID, err))
		}
		if up != nil && up.RewardRole != "" {
			if err := s.GuildMemberRoleAdd(v.GuildID, userID, up.RewardRole); err != nil {
				h.d.Log.Error(fmt.Sprintf("grant level reward to %s: %v", userID, err))
			}
		}
	}

	var settings store.TempChannelSettings
	h.d.Store.View(func(st *store.State) { settings = st.TempChannels })
	if !settings.Enabled {
		return
	}

	if v.ChannelID == settings.CreateChannelID && settings.CreateChannelID != "" {
		h.createTempChannel(s, v, settings)
	}
	if v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "" && v.BeforeUpdate.ChannelID != v.ChannelID {
		h.reapIfEmpty(s, v.GuildID, v.BeforeUpdate.ChannelID)
	}
}

func (h *Handler) createTempChannel(s *discordgo.Session, v *discordgo.VoiceStateUpdate, settings store.TempChannelSettings) {
	username := v.UserID
	if v.Member != nil && v.Member.User != nil {
		username = v.Member.User.Username
	}
	name := strings.ReplaceAll(settings.NameTemplate, "{username}", username)
	name = settings.Prefix + name + settings.Suffix

	ch, err := s.GuildChannelCreateComplex(v.GuildID, discordgo.GuildChannelCreateData{
		Name:      name,
		Type:      discordgo.ChannelTypeGuildVoice,
		ParentID:  settings.CategoryID,
		Bitrate:   settings.Bitrate,
		UserLimit: settings.UserLimit,
	})
	if err != nil {
		h.d.Log.Error(fmt.Sprintf("create temp channel for %s: %v", v.UserID, err))
		return
	}

	h.mu.Lock()
	h.temp[ch.ID] = v.UserID
	h.mu.Unlock()

	if err := s.GuildMemberMove(v.GuildID, v.UserID, &ch.ID); err != nil {
		h.d.Log.Error(fmt.Sprintf("move %s into temp channel: %v", v.UserID, err))
	}
}

// reapIfEmpty deletes a tracked temp channel once the last member leaves.
func (h *Handler) reapIfEmpty(s *discordgo.Session, guildID, channelID string) {
	h.mu.Lock()
	_, tracked := h.temp[channelID]
	h.mu.Unlock()
	if !tracked {
		return
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return
	}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			return
		}
	}

	if _, err := s.ChannelDelete(channelID); err != nil {
		h.d.Log.Error(fmt.Sprintf("delete temp channel %s: %v", channelID, err))
		return
	}
	h.mu.Lock()
	delete(h.temp, channelID)
	h.mu.Unlock()
}

// Owner reports who created the temp channel, if it is one.
func (h *Handler) Owner(channelID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	owner, ok := h.temp[channelID]
	return owner, ok
}
