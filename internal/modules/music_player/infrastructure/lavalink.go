package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// LavalinkConfig carries the Lavalink node connection settings.
type LavalinkConfig struct {
	Address  string
	Password string
}

// voiceHandshake collects the two gateway events Lavalink needs before it
// can stream: VoiceStateUpdate (session ID) and VoiceServerUpdate (token and
// endpoint). They can arrive in either order.
type voiceHandshake struct {
	mu         sync.Mutex
	channelID  *snowflake.ID
	sessionID  string
	token      string
	endpoint   string
	haveState  bool
	haveServer bool
	ready      chan struct{}
}

func newVoiceHandshake() *voiceHandshake {
	return &voiceHandshake{ready: make(chan struct{})}
}

// setState records the voice state half. Returns true once both halves are in.
func (h *voiceHandshake) setState(channelID *snowflake.ID, sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channelID = channelID
	h.sessionID = sessionID
	h.haveState = true
	return h.haveState && h.haveServer
}

// setServer records the voice server half. Returns true once both halves are in.
func (h *voiceHandshake) setServer(token, endpoint string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	h.endpoint = endpoint
	h.haveServer = true
	return h.haveState && h.haveServer
}

func (h *voiceHandshake) signalReady() {
	select {
	case <-h.ready:
	default:
		close(h.ready)
	}
}

// LavalinkAdapter implements the voice transport and track resolver ports on
// top of a Lavalink node, with discordgo carrying the gateway side.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	mu         sync.Mutex
	handshakes map[snowflake.ID]*voiceHandshake
	conns      map[snowflake.ID]*lavalinkConnection
}

// NewLavalinkAdapter creates the adapter and connects it to the configured
// Lavalink node. The discordgo session must already be identified so the
// bot's own user ID is known.
func NewLavalinkAdapter(session *discordgo.Session, cfg LavalinkConfig) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	a := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
		conns:      make(map[snowflake.ID]*lavalinkConnection),
	}

	a.link = disgolink.New(botID,
		disgolink.WithListenerFunc(a.onTrackStart),
		disgolink.WithListenerFunc(a.onTrackEnd),
		disgolink.WithListenerFunc(a.onTrackException),
		disgolink.WithListenerFunc(a.onTrackStuck),
	)

	node, err := a.link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  cfg.Address,
		Password: cfg.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}
	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", cfg.Address)

	return a, nil
}

// Close shuts down the Lavalink client.
func (a *LavalinkAdapter) Close() {
	a.link.Close()
}

// Connect joins the voice channel and waits until Lavalink has received the
// full voice handshake. Cancelling ctx abandons the attempt and tears the
// half-open gateway state back down.
func (a *LavalinkAdapter) Connect(ctx context.Context, guildID, channelID snowflake.ID) (ports.Connection, error) {
	hs := newVoiceHandshake()
	a.mu.Lock()
	a.handshakes[guildID] = hs
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.handshakes, guildID)
		a.mu.Unlock()
	}()

	if err := a.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true); err != nil {
		return nil, fmt.Errorf("failed to request voice join: %w", err)
	}

	select {
	case <-hs.ready:
	case <-ctx.Done():
		// Unwind so the gateway isn't left half-joined.
		_ = a.session.ChannelVoiceJoinManual(guildID.String(), "", false, true)
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.ErrConnectTimeout
		}
		return nil, ctx.Err()
	}

	conn := newLavalinkConnection(a, guildID)
	a.mu.Lock()
	a.conns[guildID] = conn
	a.mu.Unlock()

	return conn, nil
}

// dropConnection unregisters a closed connection.
func (a *LavalinkAdapter) dropConnection(conn *lavalinkConnection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conns[conn.guildID] == conn {
		delete(a.conns, conn.guildID)
	}
}

func (a *LavalinkAdapter) connection(guildID snowflake.ID) *lavalinkConnection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conns[guildID]
}

// OnVoiceServerUpdate must be wired into the discordgo session handlers.
func (a *LavalinkAdapter) OnVoiceServerUpdate(_ *discordgo.Session, event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("bad guild ID in voice server update", "error", err)
		return
	}

	a.mu.Lock()
	hs := a.handshakes[guildID]
	a.mu.Unlock()
	if hs == nil {
		// Voice server moved for an established connection.
		a.link.OnVoiceServerUpdate(context.Background(), guildID, event.Token, event.Endpoint)
		return
	}

	if hs.setServer(event.Token, event.Endpoint) {
		a.forwardHandshake(guildID, hs)
	}
}

// OnVoiceStateUpdate must be wired into the discordgo session handlers.
func (a *LavalinkAdapter) OnVoiceStateUpdate(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if event.UserID != a.botID.String() {
		return
	}
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("bad guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("bad channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	if channelID == nil {
		// The bot left or was disconnected from voice.
		a.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		if conn := a.connection(guildID); conn != nil {
			conn.closeEvents()
			a.dropConnection(conn)
		}
		return
	}

	a.mu.Lock()
	hs := a.handshakes[guildID]
	a.mu.Unlock()
	if hs == nil {
		a.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, event.SessionID)
		return
	}

	if hs.setState(channelID, event.SessionID) {
		a.forwardHandshake(guildID, hs)
	}
}

// forwardHandshake hands the completed handshake to Lavalink and releases
// the waiting Connect call.
func (a *LavalinkAdapter) forwardHandshake(guildID snowflake.ID, hs *voiceHandshake) {
	hs.mu.Lock()
	channelID, sessionID := hs.channelID, hs.sessionID
	token, endpoint := hs.token, hs.endpoint
	hs.mu.Unlock()

	a.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	a.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
	hs.signalReady()
}

func (a *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
	if conn := a.connection(player.GuildID()); conn != nil {
		conn.deliver(ports.StreamEvent{Type: ports.StreamStarted})
	}
}

func (a *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	conn := a.connection(player.GuildID())
	if conn == nil {
		return
	}
	switch event.Reason {
	case lavalink.TrackEndReasonFinished:
		conn.deliver(ports.StreamEvent{Type: ports.StreamFinished})
	case lavalink.TrackEndReasonLoadFailed:
		conn.deliver(ports.StreamEvent{
			Type: ports.StreamFailed,
			Err:  fmt.Errorf("transport failed to load the track"),
		})
	default:
		// Stopped, replaced or cleaned up on our own request; the session
		// already knows.
	}
}

func (a *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
	if conn := a.connection(player.GuildID()); conn != nil {
		conn.deliver(ports.StreamEvent{
			Type: ports.StreamFailed,
			Err:  fmt.Errorf("stream error: %s", event.Exception.Message),
		})
	}
}

func (a *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
	if conn := a.connection(player.GuildID()); conn != nil {
		conn.deliver(ports.StreamEvent{
			Type: ports.StreamFailed,
			Err:  fmt.Errorf("stream stalled past %v", event.Threshold),
		})
	}
}

// Compile-time port checks.
var (
	_ ports.VoiceTransport = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver  = (*LavalinkAdapter)(nil)
)
