package registry

import (
	"strings"

	"github.com/animesao/clan-bot/internal/types"
)

// Commands is the global command table; command packages fill it from
// their init functions.
var Commands = make(map[string]*types.Command)

func RegisterCommand(cmd *types.Command) {
	Commands[cmd.Name] = cmd
}

// Components maps a custom-id prefix to a button/select handler.
var Components = make(map[string]types.ComponentHandler)

func RegisterComponent(prefix string, h types.ComponentHandler) {
	Components[prefix] = h
}

// Modals maps a custom-id prefix to a modal submission handler.
var Modals = make(map[string]types.ModalHandler)

func RegisterModal(prefix string, h types.ModalHandler) {
	Modals[prefix] = h
}

// MatchComponent returns the handler with the longest prefix matching the
// custom id.
func MatchComponent(customID string) (types.ComponentHandler, bool) {
	var best string
	var h types.ComponentHandler
	for prefix, handler := range Components {
		if strings.HasPrefix(customID, prefix) && len(prefix) > len(best) {
			best = prefix
			h = handler
		}
	}
	return h, h != nil
}

// MatchModal returns the modal handler with the longest matching prefix.
func MatchModal(customID string) (types.ModalHandler, bool) {
	var best string
	var h types.ModalHandler
	for prefix, handler := range Modals {
		if strings.HasPrefix(customID, prefix) && len(prefix) > len(best) {
			best = prefix
			h = handler
		}
	}
	return h, h != nil
}
