// Package all imports every command package so their init registrations
// run.
package all

import (
	_ "github.com/animesao/clan-bot/commands/admin"
	_ "github.com/animesao/clan-bot/commands/clan"
	_ "github.com/animesao/clan-bot/commands/events"
	_ "github.com/animesao/clan-bot/commands/factions"
	_ "github.com/animesao/clan-bot/commands/giveaway"
	_ "github.com/animesao/clan-bot/commands/leveling"
	_ "github.com/animesao/clan-bot/commands/members"
	_ "github.com/animesao/clan-bot/commands/subclan"
	_ "github.com/animesao/clan-bot/commands/temp"
	_ "github.com/animesao/clan-bot/commands/trading"
	_ "github.com/animesao/clan-bot/commands/util"
)
