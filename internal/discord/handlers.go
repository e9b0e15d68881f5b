package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pmurley/sheetfill/internal/cache"
	"github.com/pmurley/sheetfill/internal/config"
	"github.com/pmurley/sheetfill/internal/convert"
	"github.com/pmurley/sheetfill/internal/storage"
	"github.com/pmurley/sheetfill/pkg/logger"
)

type HandlerManager struct {
	session  *discordgo.Session
	config   *config.Config
	logger   *logger.Logger
	cache    *cache.Cache
	service  *convert.Service
	storage  *storage.ArtifactStorage // nil when artifacts are not saved
	commands map[string]CommandHandler
}

type CommandHandler func(s *discordgo.Session, m *discordgo.MessageCreate, args []string)

func NewHandlerManager(
	session *discordgo.Session,
	config *config.Config,
	logger *logger.Logger,
	cache *cache.Cache,
	service *convert.Service,
	storage *storage.ArtifactStorage,
) *HandlerManager {
	hm := &HandlerManager{
		session:  session,
		config:   config,
		logger:   logger,
		cache:    cache,
		service:  service,
		storage:  storage,
		commands: make(map[string]CommandHandler),
	}

	hm.registerCommands()

	return hm
}

func (hm *HandlerManager) RegisterHandlers() {
	hm.session.AddHandler(hm.messageCreate)
}

func (hm *HandlerManager) registerCommands() {
	hm.commands["help"] = hm.handleHelp
	hm.commands["reload"] = hm.handleReload
	hm.commands["convert"] = hm.handleConvert
	hm.commands["preview"] = hm.handlePreview
	hm.commands["history"] = hm.handleHistory
}

func (hm *HandlerManager) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	command, args, ok := parseCommand(m.Content, hm.config.CommandPrefix)
	if !ok {
		return
	}

	if handler, exists := hm.commands[command]; exists {
		hm.commandLogger(m).Debug("Command", command)
		handler(s, m, args)
	}
}

// parseCommand splits a prefixed message into a lower-cased command and its arguments
func parseCommand(content, prefix string) (string, []string, bool) {
	if !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	parts := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(parts) == 0 {
		return "", nil, false
	}

	return strings.ToLower(parts[0]), parts[1:], true
}

func (hm *HandlerManager) handleHelp(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	helpMessage := strings.ReplaceAll(`**Sheet Fill Bot Commands:**
`+"```"+`
!help           - Show this help message
!convert [url]  - Key the new rows and attach the xlsx file
!preview [url]  - Show the rows that would be keyed
!history        - Show the most recent conversions
!reload         - Drop cached sheet data
  Without a url the configured sheet is used.
`+"```", "!", hm.config.CommandPrefix)

	s.ChannelMessageSend(m.ChannelID, helpMessage)
}

func (hm *HandlerManager) handleReload(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	hm.cache.Flush()
	s.ChannelMessageSend(m.ChannelID, "Cached sheet data cleared, the next command reads the sheet again.")
}

// commandLogger tags entries with the channel and author of a command
func (hm *HandlerManager) commandLogger(m *discordgo.MessageCreate) *logger.Logger {
	return hm.logger.With("channel", m.ChannelID, "user", m.Author.Username)
}

func (hm *HandlerManager) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		hm.commandLogger(m).Error("Failed to send reply:", err)
	}
}
