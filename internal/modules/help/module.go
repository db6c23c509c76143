package help

import (
	"github.com/bwmarrin/discordgo"

	"github.com/metrolist/metrolist-bot/internal/bot"
	"github.com/metrolist/metrolist-bot/internal/modules/help/presentation"
)

func init() {
	bot.Register(&HelpModule{})
}

// HelpModule provides the /help command.
type HelpModule struct {
	handler *presentation.HelpHandler
}

// Name returns the module name.
func (m *HelpModule) Name() string {
	return "help"
}

// Commands returns the slash commands for this module.
func (m *HelpModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List the available commands",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *HelpModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"help": m.handler.Handle,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *HelpModule) EventHandlers() []bot.EventHandler {
	return nil
}

// Init collects the command list from every registered module so /help
// always reflects what is actually installed.
func (m *HelpModule) Init(_ bot.ModuleDependencies) error {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range bot.Modules() {
		commands = append(commands, mod.Commands()...)
	}
	m.handler = presentation.NewHelpHandler(commands)
	return nil
}

// Shutdown cleans up module resources.
func (m *HelpModule) Shutdown() error {
	return nil
}
