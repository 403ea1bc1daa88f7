// Package automod classifies messages against the configured content
// filters.
package automod

import (
	"regexp"

	"github.com/animesao/clan-bot/internal/store"
)

// Verdict is what the message handler should do with the message.
type Verdict int

const (
	Allow Verdict = iota
	BlockInvite
	BlockURL
)

var (
	inviteRe = regexp.MustCompile(`(?i)(discord\.gg|discord(app)?\.com/invite)/[a-z0-9-]+`)
	urlRe    = regexp.MustCompile(`(?i)https?://\S+`)
)

// Check classifies the message. Ignored roles and allow-listed channels
// pass everything through.
func Check(settings store.AutomodSettings, content, channelID string, roleIDs []string) Verdict {
	if !settings.Enabled {
		return Allow
	}
	for _, ch := range settings.AllowedChannels {
		if ch == channelID {
			return Allow
		}
	}
	for _, ignored := range settings.IgnoredRoles {
		for _, r := range roleIDs {
			if r == ignored {
				return Allow
			}
		}
	}
	if settings.BlockInvites && inviteRe.MatchString(content) {
		return BlockInvite
	}
	if settings.BlockURLs && urlRe.MatchString(content) {
		return BlockURL
	}
	return Allow
}
