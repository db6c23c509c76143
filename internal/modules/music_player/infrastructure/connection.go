package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
)

// connectionEventBuffer is the stream event channel capacity. Events are
// dropped rather than blocking the Lavalink listener goroutine.
const connectionEventBuffer = 16

// lavalinkConnection is one guild's live voice connection. It exists from a
// successful Connect until Close (or an external disconnect) and is owned
// exclusively by that guild's playback session.
type lavalinkConnection struct {
	adapter *LavalinkAdapter
	guildID snowflake.ID

	events chan ports.StreamEvent

	mu     sync.Mutex
	closed bool
}

func newLavalinkConnection(adapter *LavalinkAdapter, guildID snowflake.ID) *lavalinkConnection {
	return &lavalinkConnection{
		adapter: adapter,
		guildID: guildID,
		events:  make(chan ports.StreamEvent, connectionEventBuffer),
	}
}

func (c *lavalinkConnection) Play(ctx context.Context, locator string) error {
	player := c.adapter.link.Player(c.guildID)
	if err := player.Update(ctx, lavalink.WithEncodedTrack(locator)); err != nil {
		return fmt.Errorf("failed to start track: %w", err)
	}
	return nil
}

func (c *lavalinkConnection) Stop(ctx context.Context) error {
	player := c.adapter.link.Player(c.guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop track: %w", err)
	}
	return nil
}

func (c *lavalinkConnection) SetPaused(ctx context.Context, paused bool) error {
	player := c.adapter.link.Player(c.guildID)
	if err := player.Update(ctx, lavalink.WithPaused(paused)); err != nil {
		return fmt.Errorf("failed to set paused state: %w", err)
	}
	return nil
}

func (c *lavalinkConnection) SetVolume(ctx context.Context, percent int) error {
	player := c.adapter.link.Player(c.guildID)
	if err := player.Update(ctx, lavalink.WithVolume(percent)); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

func (c *lavalinkConnection) Events() <-chan ports.StreamEvent {
	return c.events
}

// Close destroys the Lavalink player and leaves the voice channel.
func (c *lavalinkConnection) Close(ctx context.Context) error {
	c.adapter.dropConnection(c)
	c.closeEvents()

	if player := c.adapter.link.ExistingPlayer(c.guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			return fmt.Errorf("failed to destroy player: %w", err)
		}
	}
	if err := c.adapter.session.ChannelVoiceJoinManual(c.guildID.String(), "", false, true); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// deliver pushes a stream event without ever blocking the caller.
func (c *lavalinkConnection) deliver(ev ports.StreamEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}

func (c *lavalinkConnection) closeEvents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

var _ ports.Connection = (*lavalinkConnection)(nil)
