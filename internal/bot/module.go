package bot

import "github.com/bwmarrin/discordgo"

// InteractionHandler handles one slash command invocation.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is a discordgo event handler of any signature, for example
// func(*discordgo.Session, *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is what the bot hands a module at initialization time.
type ModuleDependencies struct {
	Session *discordgo.Session
}

// Module is one self-contained feature of the bot.
type Module interface {
	// Name identifies the module in logs.
	Name() string

	// Commands returns the slash commands the module registers.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers returns gateway event handlers to attach to the session.
	EventHandlers() []EventHandler

	// Init wires the module up. Called after the session is identified.
	Init(deps ModuleDependencies) error

	// Shutdown releases the module's resources.
	Shutdown() error
}

// ConfigurableModule is implemented by modules that read environment
// configuration. LoadConfig runs before Init and before the Discord
// connection is opened.
type ConfigurableModule interface {
	LoadConfig() error
}
