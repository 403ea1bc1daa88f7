// Package notify sends user and channel notifications and reports
// delivery instead of pretending it always works. Users with closed DMs
// are a normal condition, logged once here and nowhere else.
package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/logger"
)

// Result tells the caller whether the notification actually went out.
type Result struct {
	Delivered bool
	Err       error
}

type Notifier struct {
	session *discordgo.Session
	log     *logger.Logger
}

func New(session *discordgo.Session, log *logger.Logger) *Notifier {
	return &Notifier{session: session, log: log}
}

// Session exposes the underlying session for callers that need message
// components the notifier does not wrap.
func (n *Notifier) Session() *discordgo.Session {
	return n.session
}

// DM delivers an embed to the user's direct messages.
func (n *Notifier) DM(userID string, embed *discordgo.MessageEmbed) Result {
	ch, err := n.session.UserChannelCreate(userID)
	if err != nil {
		n.log.Debug(fmt.Sprintf("dm to %s undeliverable: %v", userID, err))
		return Result{Err: err}
	}
	if _, err := n.session.ChannelMessageSendEmbed(ch.ID, embed); err != nil {
		n.log.Debug(fmt.Sprintf("dm to %s undeliverable: %v", userID, err))
		return Result{Err: err}
	}
	return Result{Delivered: true}
}

// Channel posts to a guild channel. An empty channelID is treated as
// not-configured and reported undelivered without an error log.
func (n *Notifier) Channel(channelID, content string, embed *discordgo.MessageEmbed) Result {
	if channelID == "" {
		return Result{}
	}
	msg := &discordgo.MessageSend{Content: content}
	if embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{embed}
	}
	if _, err := n.session.ChannelMessageSendComplex(channelID, msg); err != nil {
		n.log.Error(fmt.Sprintf("notify channel %s: %v", channelID, err))
		return Result{Err: err}
	}
	return Result{Delivered: true}
}
