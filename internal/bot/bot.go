package bot

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/bwmarrin/discordgo"
)

// Embed colors for fallback responses.
const (
	colorYellow = 0xF1C40F
	colorRed    = 0xE74C3C
)

// Bot owns the Discord session and coordinates the registered modules.
type Bot struct {
	config   *Config
	session  *discordgo.Session
	modules  []Module
	handlers map[string]InteractionHandler
}

// NewBot creates a Bot with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:   cfg,
		handlers: make(map[string]InteractionHandler),
	}
}

// LoadModules pulls the modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start connects to Discord, initializes the modules and registers their
// slash commands.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	// Module configuration must be complete before anything connects.
	for _, mod := range b.modules {
		if cm, ok := mod.(ConfigurableModule); ok {
			if err := cm.LoadConfig(); err != nil {
				return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
			}
		}
	}

	b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)
	return nil
}

// Stop shuts the modules down and closes the Discord session.
func (b *Bot) Stop() error {
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}
	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

func (b *Bot) initModules() error {
	deps := ModuleDependencies{Session: b.session}

	names := make([]string, 0, len(b.modules))
	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("module %s: %w", mod.Name(), err)
		}
		names = append(names, mod.Name())
	}
	slog.Info("initialized modules", "modules", names)
	return nil
}

func (b *Bot) registerCommands() error {
	for _, mod := range b.modules {
		for _, cmd := range mod.Commands() {
			if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
				return fmt.Errorf("command %s: %w", cmd.Name, err)
			}
			slog.Debug("registered command", "command", cmd.Name)
		}
	}
	return nil
}

// handleInteraction routes slash commands to module handlers.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	handler, ok := b.handlers[cmdName]
	if !ok {
		slog.Warn("no handler for command", "command", cmdName)
		b.respondWithEmbed(s, i, "Unknown Command", "This command is not recognized.", colorYellow)
		return
	}

	responder := NewDiscordResponder(s, i.Interaction)
	if err := handler(s, i, responder); err != nil {
		slog.Error("failed to handle command", "command", cmdName, "error", err)
		b.respondWithEmbed(s, i, "Error", "Something went wrong while handling your command.", colorRed)
	}
}

func (b *Bot) respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string, color int) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{Title: title, Description: description, Color: color},
			},
		},
	})
	if err != nil {
		slog.Warn("failed to send fallback response", "error", err)
	}
}
