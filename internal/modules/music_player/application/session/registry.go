package session

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// Registry is the process-wide mapping from guild to its playback session.
// It guarantees at most one session per guild, so no two sessions ever
// contend for the same voice channel. Registry mutations are serialized
// here; everything inside a session is serialized by its own loop.
type Registry struct {
	cfg       Config
	resolver  ports.TrackResolver
	transport ports.VoiceTransport
	notifier  ports.Notifier

	mu       sync.Mutex
	sessions map[snowflake.ID]*Session
}

// NewRegistry creates an empty registry. Sessions it creates share the
// given configuration and capability adapters.
func NewRegistry(cfg Config, resolver ports.TrackResolver, transport ports.VoiceTransport, notifier ports.Notifier) *Registry {
	return &Registry{
		cfg:       cfg,
		resolver:  resolver,
		transport: transport,
		notifier:  notifier,
		sessions:  make(map[snowflake.ID]*Session),
	}
}

// GetOrCreate returns the guild's session, creating and starting one if
// none exists. Idempotent.
func (r *Registry) GetOrCreate(guildID snowflake.ID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s := New(guildID, r.cfg, r.resolver, r.transport, r.notifier, r.deregister)
	r.sessions[guildID] = s
	return s
}

// Get returns the guild's session, or nil if none exists.
func (r *Registry) Get(guildID snowflake.ID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[guildID]
}

// Remove tears down the guild's session. Only an idle session may be
// removed; otherwise it fails with domain.ErrSessionBusy.
func (r *Registry) Remove(guildID snowflake.ID) error {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if s.State() != domain.StateIdle {
		return domain.ErrSessionBusy
	}
	return s.Leave()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close destroys every session, releasing all voice connections. Used on
// bot shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		_ = s.Leave()
	}
}

// deregister is handed to each session as its onDestroy hook.
func (r *Registry) deregister(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}
