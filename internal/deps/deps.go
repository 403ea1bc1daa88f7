// Package deps bundles the services the command and event packages need.
// The bot constructs one Deps at startup and hands it to every package
// through its Setup function.
package deps

import (
	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/clan"
	"github.com/animesao/clan-bot/internal/confirm"
	"github.com/animesao/clan-bot/internal/giveaway"
	"github.com/animesao/clan-bot/internal/leveling"
	"github.com/animesao/clan-bot/internal/logger"
	"github.com/animesao/clan-bot/internal/notify"
	"github.com/animesao/clan-bot/internal/store"
)

type Deps struct {
	Cfg       *config.Config
	Log       *logger.Logger
	Store     *store.Store
	Lifecycle *clan.Lifecycle
	Apps      *clan.Applications
	Cooldowns *clan.CooldownGuard
	Confirm   *confirm.Manager
	Notify    *notify.Notifier
	Giveaways *giveaway.Manager
	Levels    *leveling.Service

	// TempOwner reports who created a temporary voice channel. Set by the
	// event layer once the voice handler exists; nil until then.
	TempOwner func(channelID string) (string, bool)
}
