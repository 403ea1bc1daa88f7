package registry

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/animesao/clan-bot/internal/types"
)

func TestMatchComponentLongestPrefix(t *testing.T) {
	var hit string
	RegisterComponent("trade_", func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		hit = "short"
		return nil
	})
	RegisterComponent("trade_buy:", func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		hit = "long"
		return nil
	})

	h, ok := MatchComponent("trade_buy:42")
	assert.True(t, ok)
	assert.NoError(t, h(nil, nil))
	assert.Equal(t, "long", hit, "the most specific prefix must win")

	h, ok = MatchComponent("trade_close:42")
	assert.True(t, ok)
	assert.NoError(t, h(nil, nil))
	assert.Equal(t, "short", hit)

	_, ok = MatchComponent("unrelated")
	assert.False(t, ok)
}

func TestMatchModal(t *testing.T) {
	RegisterModal("apply_form", func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		return nil
	})

	_, ok := MatchModal("apply_form")
	assert.True(t, ok)
	_, ok = MatchModal("other_form")
	assert.False(t, ok)
}

func TestRegisterCommand(t *testing.T) {
	cmd := &types.Command{Name: "probe"}
	RegisterCommand(cmd)
	assert.Same(t, cmd, Commands["probe"])
}
