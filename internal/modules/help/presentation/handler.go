package presentation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/metrolist/metrolist-bot/internal/bot"
)

const colorInfo = 0x3498DB

// HelpHandler handles the /help command.
type HelpHandler struct {
	description string
}

// NewHelpHandler creates a HelpHandler for the given command list. The
// listing is rendered once since commands do not change at runtime.
func NewHelpHandler(commands []*discordgo.ApplicationCommand) *HelpHandler {
	sorted := make([]*discordgo.ApplicationCommand, len(commands))
	copy(sorted, commands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	lines := make([]string, 0, len(sorted))
	for _, cmd := range sorted {
		lines = append(lines, fmt.Sprintf("`/%s` - %s", cmd.Name, cmd.Description))
	}

	return &HelpHandler{description: strings.Join(lines, "\n")}
}

// Handle responds with the command listing.
func (h *HelpHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Commands",
					Description: h.description,
					Color:       colorInfo,
				},
			},
		},
	})
}
