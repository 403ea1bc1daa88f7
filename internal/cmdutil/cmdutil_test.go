package cmdutil

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/animesao/clan-bot/internal/clan"
)

func TestUserErrorTypedErrors(t *testing.T) {
	msg, ok := UserError(&clan.AlreadyInSubclanError{Subclan: "Альфа"})
	assert.True(t, ok)
	assert.Contains(t, msg, "Альфа")

	msg, ok = UserError(&clan.CooldownError{Remaining: 3 * time.Hour})
	assert.True(t, ok)
	assert.Contains(t, msg, "3ч")

	_, ok = UserError(&clan.ProvisionError{Op: "create role", Err: errors.New("503")})
	assert.True(t, ok, "provisioning failures get a generic user message")
}

func TestUserErrorSentinels(t *testing.T) {
	msg, ok := UserError(clan.ErrSubclanFull)
	assert.True(t, ok)
	assert.NotEmpty(t, msg)

	// Wrapped sentinels still match.
	msg, ok = UserError(fmt.Errorf("invite: %w", clan.ErrSubclanFull))
	assert.True(t, ok)
	assert.NotEmpty(t, msg)
}

func TestUserErrorUnknown(t *testing.T) {
	_, ok := UserError(errors.New("database on fire"))
	assert.False(t, ok, "unexpected errors must reach the dispatch layer, not the user")
}
