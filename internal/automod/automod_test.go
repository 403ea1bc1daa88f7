package automod

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/animesao/clan-bot/internal/store"
)

func enabled() store.AutomodSettings {
	return store.AutomodSettings{
		Enabled:      true,
		BlockInvites: true,
		BlockURLs:    true,
	}
}

func TestCheckInvites(t *testing.T) {
	cases := []string{
		"заходите discord.gg/abc123",
		"https://discord.com/invite/xyz",
		"discordapp.com/invite/clan-x",
		"DISCORD.GG/CAPS",
	}
	for _, content := range cases {
		assert.Equal(t, BlockInvite, Check(enabled(), content, "ch", nil), content)
	}
}

func TestCheckURLs(t *testing.T) {
	assert.Equal(t, BlockURL, Check(enabled(), "смотрите https://example.com/page", "ch", nil))
	assert.Equal(t, BlockURL, Check(enabled(), "http://shop.ru", "ch", nil))
	assert.Equal(t, Allow, Check(enabled(), "обычное сообщение", "ch", nil))
}

func TestInviteTakesPriorityOverURL(t *testing.T) {
	assert.Equal(t, BlockInvite, Check(enabled(), "https://discord.gg/abc", "ch", nil))
}

func TestDisabledAllowsEverything(t *testing.T) {
	s := enabled()
	s.Enabled = false
	assert.Equal(t, Allow, Check(s, "discord.gg/abc", "ch", nil))
}

func TestAllowedChannelBypasses(t *testing.T) {
	s := enabled()
	s.AllowedChannels = []string{"links"}
	assert.Equal(t, Allow, Check(s, "https://example.com", "links", nil))
	assert.Equal(t, BlockURL, Check(s, "https://example.com", "general", nil))
}

func TestIgnoredRoleBypasses(t *testing.T) {
	s := enabled()
	s.IgnoredRoles = []string{"mod"}
	assert.Equal(t, Allow, Check(s, "discord.gg/abc", "ch", []string{"member", "mod"}))
	assert.Equal(t, BlockInvite, Check(s, "discord.gg/abc", "ch", []string{"member"}))
}

func TestIndividualFiltersToggle(t *testing.T) {
	s := enabled()
	s.BlockInvites = false
	assert.Equal(t, Allow, Check(s, "discord.gg/abc", "ch", nil))
	// The invite still matches the URL filter when written as a link.
	assert.Equal(t, BlockURL, Check(s, "https://discord.gg/abc", "ch", nil))

	s = enabled()
	s.BlockURLs = false
	assert.Equal(t, Allow, Check(s, "https://example.com", "ch", nil))
}
