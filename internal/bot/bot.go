package bot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/commands/admin"
	clancmd "github.com/animesao/clan-bot/commands/clan"
	eventscmd "github.com/animesao/clan-bot/commands/events"
	"github.com/animesao/clan-bot/commands/factions"
	giveawaycmd "github.com/animesao/clan-bot/commands/giveaway"
	levelingcmd "github.com/animesao/clan-bot/commands/leveling"
	"github.com/animesao/clan-bot/commands/members"
	subclancmd "github.com/animesao/clan-bot/commands/subclan"
	tempcmd "github.com/animesao/clan-bot/commands/temp"
	"github.com/animesao/clan-bot/commands/trading"
	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/clan"
	"github.com/animesao/clan-bot/internal/commands"
	"github.com/animesao/clan-bot/internal/confirm"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/events"
	"github.com/animesao/clan-bot/internal/giveaway"
	"github.com/animesao/clan-bot/internal/leveling"
	"github.com/animesao/clan-bot/internal/logger"
	"github.com/animesao/clan-bot/internal/notify"
	"github.com/animesao/clan-bot/internal/provision"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/tasks"
)

type Bot struct {
	sessions     []*discordgo.Session
	config       *config.Config
	logger       *logger.Logger
	store        *store.Store
	cmdHandler   *commands.Handler
	eventHandler *events.Handler
	sweeper      *tasks.Sweeper
	mu           sync.RWMutex
}

func New(cfg *config.Config, l *logger.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if l == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Discord.Token == "" {
		return nil, errors.New("discord token is required")
	}

	st, err := store.Open(cfg.Data.File, cfg.Data.Backup)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %v", err)
	}

	return &Bot{
		config:   cfg,
		logger:   l,
		store:    st,
		sessions: make([]*discordgo.Session, 0),
	}, nil
}

// Store exposes the data store, primarily for the HTTP API.
func (b *Bot) Store() *store.Store {
	return b.store
}

func (b *Bot) setupHandlers(session *discordgo.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.buildDeps(session)

	admin.Setup(d)
	clancmd.Setup(d)
	subclancmd.Setup(d)
	members.Setup(d)
	factions.Setup(d)
	eventscmd.Setup(d)
	giveawaycmd.Setup(d)
	levelingcmd.Setup(d)
	trading.Setup(d)
	tempcmd.Setup(d)

	if b.cmdHandler == nil {
		b.cmdHandler = commands.NewHandler(session, b.config, b.logger)
	}
	if b.eventHandler == nil {
		b.eventHandler = events.NewHandler(session, b.config, b.logger, d)
	}
	if b.sweeper == nil {
		b.sweeper = tasks.NewSweeper(d, session)
	}

	session.AddHandler(b.cmdHandler.HandleInteraction)

	var wg sync.WaitGroup
	errChan := make(chan error, 2)
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := b.cmdHandler.LoadCommands(); err != nil {
			errChan <- fmt.Errorf("failed to load commands: %v", err)
		}
	}()

	go func() {
		defer wg.Done()
		if err := b.eventHandler.LoadEvents(); err != nil {
			errChan <- fmt.Errorf("failed to load events: %v", err)
		}
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}

	b.sweeper.Start()
	return nil
}

func (b *Bot) buildDeps(session *discordgo.Session) *deps.Deps {
	notifier := notify.New(session, b.logger)
	prov := provision.NewDiscord(session, b.config.Discord.GuildID)
	cooldowns := clan.NewCooldownGuard(b.store)

	return &deps.Deps{
		Cfg:       b.config,
		Log:       b.logger,
		Store:     b.store,
		Lifecycle: clan.NewLifecycle(b.store, prov, cooldowns, b.logger),
		Apps:      clan.NewApplications(b.store),
		Cooldowns: cooldowns,
		Confirm:   confirm.NewManager(),
		Notify:    notifier,
		Giveaways: giveaway.NewManager(b.store, nil),
		Levels:    leveling.NewService(b.store),
	}
}

func (b *Bot) Start() error {
	b.mu.RLock()
	isSharded := b.config.Discord.Sharding.Enabled
	b.mu.RUnlock()

	if isSharded {
		return b.startSharded()
	}
	return b.startSingle()
}

func (b *Bot) startSingle() error {
	session, err := discordgo.New("Bot " + b.config.Discord.Token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %v", err)
	}

	b.mu.Lock()
	b.sessions = []*discordgo.Session{session}
	b.mu.Unlock()

	if err := b.setupSession(session, 0, 1); err != nil {
		b.logger.Error("Failed to setup session: " + err.Error())
		return err
	}

	b.logger.Info("Bot started successfully in single mode")
	return nil
}

func (b *Bot) startSharded() error {
	totalShards := b.config.Discord.Sharding.TotalShards
	if totalShards <= 0 {
		return errors.New("invalid shard count")
	}

	b.mu.Lock()
	b.sessions = make([]*discordgo.Session, totalShards)
	b.mu.Unlock()

	var wg sync.WaitGroup
	errChan := make(chan error, totalShards)
	semaphore := make(chan struct{}, 5)

	for i := 0; i < totalShards; i++ {
		wg.Add(1)
		go func(shardID int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			session, err := discordgo.New("Bot " + b.config.Discord.Token)
			if err != nil {
				errChan <- fmt.Errorf("failed to create discord session for shard %d: %v", shardID, err)
				return
			}

			b.mu.Lock()
			b.sessions[shardID] = session
			b.mu.Unlock()

			if err := b.setupSession(session, shardID, totalShards); err != nil {
				errChan <- fmt.Errorf("failed to setup shard %d: %v", shardID, err)
			}
		}(i)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors starting sharded mode: %v", errs)
	}

	b.logger.Info("Bot started successfully in sharded mode")
	return nil
}

func (b *Bot) setupSession(session *discordgo.Session, shardID, totalShards int) error {
	session.ShardID = shardID
	session.ShardCount = totalShards
	session.Identify.Intents = discordgo.IntentsAll

	if shardID == 0 {
		if err := b.setupHandlers(session); err != nil {
			return fmt.Errorf("failed to setup handlers: %v", err)
		}
	}

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %v", err)
	}

	return nil
}

func (b *Bot) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sweeper != nil {
		b.sweeper.Stop()
	}

	var wg sync.WaitGroup
	sessionErrors := make(chan error, len(b.sessions))

	for _, session := range b.sessions {
		if session == nil {
			continue
		}
		wg.Add(1)
		go func(s *discordgo.Session) {
			defer wg.Done()
			if err := s.Close(); err != nil {
				sessionErrors <- fmt.Errorf("failed to close session: %v", err)
			}
		}(session)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-time.After(25 * time.Second):
		return errors.New("session shutdown timed out")
	case <-done:
	}

	if err := b.store.Save(); err != nil {
		return fmt.Errorf("failed to flush data store: %v", err)
	}

	close(sessionErrors)
	var errs []error
	for err := range sessionErrors {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
