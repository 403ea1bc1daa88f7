package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/animesao/clan-bot/api/server"
	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/bot"
	"github.com/animesao/clan-bot/internal/logger"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	logger := logger.New(cfg.Logger)
	if logger == nil {
		log.Fatal("Failed to initialize logger")
	}

	logger.Info("Initializing bot...")
	clanBot, err := bot.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create bot: " + err.Error())
	}

	if cfg.API.Enabled {
		srv := server.NewServer(cfg, clanBot.Store())
		srv.SetupRoutes()
		go func() {
			logger.Info("Starting HTTP server...")
			if err := srv.Start(); err != nil {
				logger.Error("HTTP server error: " + err.Error())
			}
		}()
	}

	logger.Info("Starting bot...")
	if err := clanBot.Start(); err != nil {
		logger.Fatal("Failed to start bot: " + err.Error())
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	<-sc

	logger.Info("Shutting down...")
	if err := clanBot.Stop(); err != nil {
		logger.Error("Error during shutdown: " + err.Error())
	}
}
