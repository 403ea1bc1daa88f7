package events

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/events/guild"
	"github.com/animesao/clan-bot/events/message"
	"github.com/animesao/clan-bot/events/voice"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/logger"
)

// Handler wires every gateway event handler onto the session.
type Handler struct {
	session   *discordgo.Session
	config    *config.Config
	logger    *logger.Logger
	guild     *guild.Handler
	message   *message.Handler
	voice     *voice.Handler
	readyOnce sync.Once
}

func NewHandler(s *discordgo.Session, cfg *config.Config, l *logger.Logger, d *deps.Deps) *Handler {
	h := &Handler{
		session: s,
		config:  cfg,
		logger:  l,
		guild:   guild.NewHandler(d),
		message: message.NewHandler(d),
		voice:   voice.NewHandler(d),
	}
	d.TempOwner = h.voice.Owner
	return h
}

func (h *Handler) LoadEvents() error {
	h.logger.Info("Loading events...")

	h.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.readyOnce.Do(func() {
			h.logger.Info(fmt.Sprintf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator))
			h.logger.Info(fmt.Sprintf("Bot is in %d guilds", len(s.State.Guilds)))

			if err := s.UpdateGameStatus(0, h.config.Discord.Status); err != nil {
				h.logger.Error(fmt.Sprintf("Error setting status: %v", err))
			}
		})
	})

	h.session.AddHandler(h.guild.HandleMemberAdd)
	h.session.AddHandler(h.guild.HandleMemberRemove)
	h.session.AddHandler(h.message.HandleMessageCreate)
	h.session.AddHandler(h.voice.HandleVoiceStateUpdate)

	if h.config.Debug {
		h.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
			if m.Author == nil || m.Author.ID == s.State.User.ID {
				return
			}
			h.logger.Debug(fmt.Sprintf("Message received from %s: %s", m.Author.Username, m.Content))
		})
	}

	h.logger.Info("Events loaded successfully")
	return nil
}
