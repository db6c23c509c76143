package ports

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// Notifier delivers user-facing playback notifications to a text channel.
// Sessions use it to surface recovered failures and track changes; delivery
// errors are logged, never propagated.
type Notifier interface {
	// NowPlaying announces that a track started playing.
	NowPlaying(channelID snowflake.ID, track *domain.Track)

	// PlaybackError reports a recovered playback problem, such as a dropped
	// track or a failed connection attempt.
	PlaybackError(channelID snowflake.ID, message string)
}
