package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// mockConnection is a controllable ports.Connection. Tests drive playback
// by sending on events.
type mockConnection struct {
	mu        sync.Mutex
	events    chan ports.StreamEvent
	played    []string // locators passed to Play
	stops     int
	paused    []bool
	volumes   []int
	closed    bool
	closeOnce sync.Once
}

func newMockConnection() *mockConnection {
	return &mockConnection{events: make(chan ports.StreamEvent, 16)}
}

func (c *mockConnection) Play(_ context.Context, locator string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played = append(c.played, locator)
	return nil
}

func (c *mockConnection) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	return nil
}

func (c *mockConnection) SetPaused(_ context.Context, paused bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = append(c.paused, paused)
	return nil
}

func (c *mockConnection) SetVolume(_ context.Context, percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volumes = append(c.volumes, percent)
	return nil
}

func (c *mockConnection) Events() <-chan ports.StreamEvent {
	return c.events
}

func (c *mockConnection) Close(_ context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.events) })
	return nil
}

// disconnect simulates the transport dropping the connection externally.
func (c *mockConnection) disconnect() {
	c.closeOnce.Do(func() { close(c.events) })
}

func (c *mockConnection) finish() {
	c.events <- ports.StreamEvent{Type: ports.StreamFinished}
}

func (c *mockConnection) fail(err error) {
	c.events <- ports.StreamEvent{Type: ports.StreamFailed, Err: err}
}

func (c *mockConnection) playCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.played)
}

func (c *mockConnection) lastPlayed() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.played) == 0 {
		return ""
	}
	return c.played[len(c.played)-1]
}

func (c *mockConnection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// mockTransport hands out mockConnections and counts connection attempts.
type mockTransport struct {
	mu        sync.Mutex
	conns     []*mockConnection
	connectFn func(ctx context.Context, guildID, channelID snowflake.ID) (ports.Connection, error)
}

func newMockTransport() *mockTransport {
	return &mockTransport{}
}

func (t *mockTransport) Connect(ctx context.Context, guildID, channelID snowflake.ID) (ports.Connection, error) {
	t.mu.Lock()
	fn := t.connectFn
	t.mu.Unlock()
	if fn != nil {
		return fn(ctx, guildID, channelID)
	}

	conn := newMockConnection()
	t.mu.Lock()
	t.conns = append(t.conns, conn)
	t.mu.Unlock()
	return conn, nil
}

func (t *mockTransport) connectCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

func (t *mockTransport) conn(i int) *mockConnection {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= len(t.conns) {
		return nil
	}
	return t.conns[i]
}

// mockResolver resolves by echoing the source query as the locator, unless
// refreshFn overrides it.
type mockResolver struct {
	mu        sync.Mutex
	refreshes int
	refreshFn func(ctx context.Context, track *domain.Track) (*domain.Track, error)
}

func (r *mockResolver) Resolve(_ context.Context, query string) (*domain.Track, error) {
	return &domain.Track{Title: query, SourceQuery: query, Locator: "resolved:" + query}, nil
}

func (r *mockResolver) Refresh(ctx context.Context, track *domain.Track) (*domain.Track, error) {
	r.mu.Lock()
	r.refreshes++
	fn := r.refreshFn
	r.mu.Unlock()
	if fn != nil {
		return fn(ctx, track)
	}
	return track.WithLocator("resolved:" + track.SourceQuery), nil
}

func (r *mockResolver) refreshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshes
}

// mockNotifier records notifications.
type mockNotifier struct {
	mu         sync.Mutex
	nowPlaying []*domain.Track
	errors     []string
}

func (n *mockNotifier) NowPlaying(_ snowflake.ID, track *domain.Track) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nowPlaying = append(n.nowPlaying, track)
}

func (n *mockNotifier) PlaybackError(_ snowflake.ID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *mockNotifier) nowPlayingCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.nowPlaying)
}

func (n *mockNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testConfig() Config {
	return Config{
		MaxQueueLength:        100,
		IdleTimeout:           time.Minute,
		ResolutionTimeout:     time.Second,
		ConnectionTimeout:     time.Second,
		MaxResolutionFailures: 3,
	}
}

func queuedTrack(title string) *domain.Track {
	// Pre-resolved so tests exercise playback without the resolver.
	return &domain.Track{Title: title, SourceQuery: title, Locator: "resolved:" + title}
}

func unresolvedTrack(title string) *domain.Track {
	return &domain.Track{Title: title, SourceQuery: title}
}
