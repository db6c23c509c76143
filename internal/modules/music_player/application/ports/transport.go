package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// StreamEventType identifies an event emitted by an active voice connection.
type StreamEventType int

const (
	// StreamStarted means the transport began streaming the current track.
	StreamStarted StreamEventType = iota
	// StreamFinished means the current track ended naturally.
	StreamFinished
	// StreamFailed means the transport gave up on the current track.
	// A stop or replacement requested through the connection itself is not
	// reported; only genuine completions and failures are.
	StreamFailed
)

// StreamEvent is delivered on a Connection's event channel.
type StreamEvent struct {
	Type StreamEventType
	Err  error // set for StreamFailed
}

// Connection is a live voice connection to one channel, exclusively owned
// by a single playback session until closed.
type Connection interface {
	// Play starts streaming the given locator, replacing any current stream.
	Play(ctx context.Context, locator string) error

	// Stop halts the current stream without closing the connection.
	Stop(ctx context.Context) error

	// SetPaused pauses or resumes the current stream.
	SetPaused(ctx context.Context, paused bool) error

	// SetVolume sets the playback volume in percent.
	SetVolume(ctx context.Context, percent int) error

	// Events returns the stream event channel. It is closed when the
	// connection is closed.
	Events() <-chan StreamEvent

	// Close releases the connection and leaves the voice channel.
	Close(ctx context.Context) error
}

// VoiceTransport establishes voice connections. Connect must respect the
// deadline on ctx and fail with the domain connection taxonomy
// (domain.ErrConnectTimeout, domain.ErrPermissionDenied,
// domain.ErrChannelFull) where the cause is known.
type VoiceTransport interface {
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (Connection, error)
}
