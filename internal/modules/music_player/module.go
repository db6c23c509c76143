package music_player

import (
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/metrolist/metrolist-bot/internal/bot"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/session"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/infrastructure"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.Module = (*MusicPlayerModule)(nil)
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	handlers        *presentation.Handlers
	registry        *session.Registry
	lavalinkAdapter *infrastructure.LavalinkAdapter
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.handlers.HandlePlay,
		"skip":   m.handlers.HandleSkip,
		"pause":  m.handlers.HandlePause,
		"resume": m.handlers.HandleResume,
		"stop":   m.handlers.HandleStop,
		"queue":  m.handlers.HandleQueue,
		"loop":   m.handlers.HandleLoop,
		"volume": m.handlers.HandleVolume,
		"remove": m.handlers.HandleRemove,
		"move":   m.handlers.HandleMove,
		"clear":  m.handlers.HandleClear,
		"leave":  m.handlers.HandleLeave,
	}
}

// EventHandlers returns the gateway event handlers for this module. The
// voice events are forwarded to the Lavalink adapter, which needs both
// halves of the voice handshake.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			if m.lavalinkAdapter != nil {
				m.lavalinkAdapter.OnVoiceServerUpdate(s, event)
			}
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.lavalinkAdapter != nil {
				m.lavalinkAdapter.OnVoiceStateUpdate(s, event)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module. The discordgo session must already be
// identified so the Lavalink adapter knows the bot's own user ID.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player requires a Discord session")
	}

	adapter, err := infrastructure.NewLavalinkAdapter(deps.Session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	})
	if err != nil {
		return err
	}
	m.lavalinkAdapter = adapter

	notifier := infrastructure.NewNotifier(deps.Session)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)

	m.registry = session.NewRegistry(session.Config{
		MaxQueueLength:        m.config.MaxQueueLength,
		IdleTimeout:           m.config.IdleTimeout,
		ResolutionTimeout:     m.config.ResolutionTimeout,
		ConnectionTimeout:     m.config.ConnectionTimeout,
		MaxResolutionFailures: m.config.MaxResolutionFailures,
	}, adapter, adapter, notifier)

	m.handlers = presentation.NewHandlers(m.registry, adapter, voiceState, m.config.ResolutionTimeout)

	slog.Info("music_player module initialized",
		"max_queue_length", m.config.MaxQueueLength,
		"idle_timeout", m.config.IdleTimeout)

	return nil
}

// Shutdown tears down every playback session and the Lavalink connection.
func (m *MusicPlayerModule) Shutdown() error {
	if m.registry != nil {
		m.registry.Close()
	}
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}
	return nil
}
