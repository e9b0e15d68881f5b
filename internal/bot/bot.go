package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/pmurley/sheetfill/internal/cache"
	"github.com/pmurley/sheetfill/internal/config"
	"github.com/pmurley/sheetfill/internal/convert"
	"github.com/pmurley/sheetfill/internal/discord"
	"github.com/pmurley/sheetfill/internal/storage"
	"github.com/pmurley/sheetfill/pkg/logger"
)

type Bot struct {
	session   *discordgo.Session
	config    *config.Config
	logger    *logger.Logger
	dataCache *cache.Cache
	service   *convert.Service
	handlers  *discord.HandlerManager
	stopChan  chan struct{}

	lastPending int
}

func New(cfg *config.Config, log *logger.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Message content is needed to read commands
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	dataCache := cache.New(cfg.CacheDuration)

	var opts []convert.Option
	var artifacts *storage.ArtifactStorage
	if cfg.SaveArtifacts() {
		artifacts, err = storage.NewArtifactStorage(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create artifact storage: %w", err)
		}
		opts = append(opts, convert.WithStorage(artifacts))
	}

	service := convert.NewService(cfg, log, dataCache, opts...)

	b := &Bot{
		session:   session,
		config:    cfg,
		logger:    log,
		dataCache: dataCache,
		service:   service,
		stopChan:  make(chan struct{}),
	}

	b.handlers = discord.NewHandlerManager(b.session, cfg, log, dataCache, service, artifacts)

	return b, nil
}

func (b *Bot) Start() error {
	b.handlers.RegisterHandlers()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	if b.config.MonitorChannelID != "" {
		b.startPendingMonitor()
	}

	return nil
}

func (b *Bot) Stop() error {
	close(b.stopChan)
	return b.session.Close()
}
