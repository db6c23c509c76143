package infrastructure

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorGreen = 0x1DB954
	colorRed   = 0xE74C3C
)

// Notifier posts playback notifications as Discord embeds. Send failures
// are logged and swallowed; a broken text channel must never stall
// playback.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// NowPlaying announces the track that just started.
func (n *Notifier) NowPlaying(channelID snowflake.ID, track *domain.Track) {
	embed := &discordgo.MessageEmbed{
		Author:    &discordgo.MessageEmbedAuthor{Name: "Now Playing"},
		Title:     track.Title,
		Color:     colorGreen,
		Timestamp: track.EnqueuedAt.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: track.FormattedDuration(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", track.Requester),
		},
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}

	if _, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed); err != nil {
		slog.Warn("failed to send now-playing notification",
			"channel", channelID, "error", err)
	}
}

// PlaybackError reports a recovered playback problem to the channel.
func (n *Notifier) PlaybackError(channelID snowflake.ID, message string) {
	embed := &discordgo.MessageEmbed{
		Title:       "Playback Problem",
		Description: message,
		Color:       colorRed,
	}
	if _, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed); err != nil {
		slog.Warn("failed to send playback error notification",
			"channel", channelID, "error", err)
	}
}

var _ ports.Notifier = (*Notifier)(nil)
