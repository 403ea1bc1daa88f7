package types

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
)

type CommandOption struct {
	Name        string
	Description string
	Type        discordgo.ApplicationCommandOptionType
	Required    bool
	Choices     []*discordgo.ApplicationCommandOptionChoice
	// Options nests sub-commands and their arguments.
	Options []*CommandOption
}

type Command struct {
	Name         string
	Description  string
	Category     string
	Cooldown     time.Duration
	DevOnly      bool
	AdminOnly    bool
	Options      []*CommandOption
	AutoComplete func(s *discordgo.Session, i *discordgo.InteractionCreate) ([]*discordgo.ApplicationCommandOptionChoice, error)
	Run          func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error
}

// ComponentHandler handles button and select interactions whose custom id
// starts with the registered prefix.
type ComponentHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// ModalHandler handles modal submissions whose custom id starts with the
// registered prefix.
type ModalHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error
