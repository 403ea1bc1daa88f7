package util

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/types"
)

func init() {
	registry.RegisterCommand(PingCommand)
}

var PingCommand = &types.Command{
	Name:        "ping",
	Description: "Задержка и состояние бота",
	Category:    "Утилиты",
	Cooldown:    5 * time.Second,
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		start := time.Now()

		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		})
		if err != nil {
			return err
		}

		latency := s.HeartbeatLatency()
		restLatency := time.Since(start)
		uptime := time.Since(cfg.BotStartTime)

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		embed := &discordgo.MessageEmbed{
			Title:     "🏓 Понг!",
			Color:     0x2ECC71,
			Timestamp: time.Now().Format(time.RFC3339),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Задержка шлюза", Value: fmt.Sprintf("`%dms`", latency.Milliseconds()), Inline: true},
				{Name: "Задержка REST", Value: fmt.Sprintf("`%dms`", restLatency.Milliseconds()), Inline: true},
				{Name: "Аптайм", Value: fmt.Sprintf("`%s`", uptime.Round(time.Second)), Inline: true},
				{Name: "Память", Value: fmt.Sprintf("`%.2f MB`", float64(m.Alloc)/1024/1024), Inline: true},
				{Name: "Горутины", Value: fmt.Sprintf("`%d`", runtime.NumGoroutine()), Inline: true},
			},
		}

		_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{embed},
		})
		return err
	},
}
