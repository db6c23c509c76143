package session

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// opTimeout bounds short control calls against an established connection
// (stop, pause, volume). Connection establishment and resolution carry their
// own configured timeouts.
const opTimeout = 5 * time.Second

// DefaultVolume is the initial playback volume in percent.
const DefaultVolume = 100

var (
	// ErrSessionClosed is returned by commands issued after the session was
	// destroyed.
	ErrSessionClosed = errors.New("the session is gone")

	// ErrNotPlaying is returned when an operation needs an active track.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when pausing an already paused session.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when resuming a session that is not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrIsCurrent is returned when Remove or Move targets the playing
	// track; skipping is the only way to displace position 0.
	ErrIsCurrent = errors.New("use skip for the playing track")

	// ErrVolumeOutOfRange is returned for volumes outside 0..MaxVolume.
	ErrVolumeOutOfRange = errors.New("volume must be between 0 and 150")
)

// MaxVolume is the highest accepted playback volume in percent.
const MaxVolume = 150

// Config carries the per-session tunables.
type Config struct {
	MaxQueueLength        int
	IdleTimeout           time.Duration
	ResolutionTimeout     time.Duration
	ConnectionTimeout     time.Duration
	MaxResolutionFailures int
}

// Session drives playback for a single guild. All queue and state mutations
// run on one internal loop, so commands and transport events for the guild
// are processed strictly in arrival order. Sessions for different guilds are
// fully independent.
type Session struct {
	guildID   snowflake.ID
	cfg       Config
	resolver  ports.TrackResolver
	transport ports.VoiceTransport
	notifier  ports.Notifier // may be nil
	onDestroy func(snowflake.ID)

	cmds    chan func()
	results chan asyncResult
	done    chan struct{}

	stateMirror atomic.Int32 // readable without entering the loop

	// Everything below is owned by the run loop.
	st            domain.SessionState
	queue         *domain.Queue
	loopMode      domain.LoopMode
	volume        int
	conn          ports.Connection
	notifyChannel snowflake.ID
	failures      int // consecutive failed playback attempts
	inflight      context.CancelFunc
	pendingPlay   *domain.Track // head the in-flight play attempt was launched for
	seq           uint64        // generation counter for in-flight operations
	idleTimer     *time.Timer
}

type asyncKind int

const (
	asyncConnect asyncKind = iota
	asyncPlay
)

// asyncResult is posted back to the loop by an in-flight goroutine.
type asyncResult struct {
	seq   uint64
	kind  asyncKind
	conn  ports.Connection // asyncConnect only
	track *domain.Track    // asyncPlay: the track with its resolved locator
	err   error
}

// New creates a session for the guild and starts its loop. onDestroy is
// invoked exactly once when the session tears itself down.
func New(
	guildID snowflake.ID,
	cfg Config,
	resolver ports.TrackResolver,
	transport ports.VoiceTransport,
	notifier ports.Notifier,
	onDestroy func(snowflake.ID),
) *Session {
	s := &Session{
		guildID:   guildID,
		cfg:       cfg,
		resolver:  resolver,
		transport: transport,
		notifier:  notifier,
		onDestroy: onDestroy,
		cmds:      make(chan func()),
		results:   make(chan asyncResult),
		done:      make(chan struct{}),
		st:        domain.StateIdle,
		queue:     domain.NewQueue(cfg.MaxQueueLength),
		loopMode:  domain.LoopModeOff,
		volume:    DefaultVolume,
	}
	go s.run()
	return s
}

// GuildID returns the guild this session belongs to.
func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

// State returns the session's current state. Safe from any goroutine.
func (s *Session) State() domain.SessionState {
	return domain.SessionState(s.stateMirror.Load())
}

// run is the single logical event stream for the guild.
func (s *Session) run() {
	for {
		var connEvents <-chan ports.StreamEvent
		if s.conn != nil {
			connEvents = s.conn.Events()
		}
		var idleC <-chan time.Time
		if s.idleTimer != nil {
			idleC = s.idleTimer.C
		}

		select {
		case cmd := <-s.cmds:
			cmd()
		case res := <-s.results:
			s.handleAsync(res)
		case ev, ok := <-connEvents:
			if !ok {
				s.handleConnectionLost()
				continue
			}
			s.handleStreamEvent(ev)
		case <-idleC:
			s.idleTimer = nil
			s.handleIdleExpiry()
		case <-s.done:
			return
		}
	}
}

// do executes fn on the session loop and waits for it to finish.
func (s *Session) do(fn func()) error {
	executed := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(executed) }:
	case <-s.done:
		return ErrSessionClosed
	}
	select {
	case <-executed:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Play enqueues a track and, if the session is idle, starts playback,
// connecting to the given voice channel first when necessary. It returns
// the track's queue position (0 = currently playing). Notifications for
// this session go to notifyChannelID from now on.
func (s *Session) Play(voiceChannelID, notifyChannelID snowflake.ID, track *domain.Track) (int, error) {
	var (
		pos int
		err error
	)
	doErr := s.do(func() {
		s.notifyChannel = notifyChannelID

		pos, err = s.queue.Enqueue(track)
		if err != nil {
			return
		}
		s.stopIdleTimer()

		if s.st != domain.StateIdle {
			return
		}
		if s.conn == nil {
			s.startConnect(voiceChannelID)
		} else {
			s.startPlayback()
		}
	})
	if doErr != nil {
		return 0, doErr
	}
	return pos, err
}

// Skip removes up to n tracks from the head of the queue, suppressing any
// loop-mode re-insertion, and starts the first surviving track. It returns
// the skipped tracks and the new head (nil when the queue drained).
func (s *Session) Skip(n int) ([]*domain.Track, *domain.Track, error) {
	var (
		skipped []*domain.Track
		next    *domain.Track
		err     error
	)
	doErr := s.do(func() {
		if s.queue.IsEmpty() {
			err = ErrNotPlaying
			return
		}
		skipped = s.queue.Skip(n)
		next = s.queue.Head()

		switch s.st {
		case domain.StatePlaying, domain.StatePaused:
			if s.conn != nil {
				ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
				if stopErr := s.conn.Stop(ctx); stopErr != nil {
					slog.Warn("failed to stop current track on skip",
						"guild", s.guildID, "error", stopErr)
				}
				cancel()
			}
			s.startPlayback()
		default:
			s.resyncIfStale()
		}
	})
	if doErr != nil {
		return nil, nil, doErr
	}
	return skipped, next, err
}

// Pause pauses the current stream.
func (s *Session) Pause() error {
	var err error
	doErr := s.do(func() {
		switch s.st {
		case domain.StatePaused:
			err = ErrAlreadyPaused
			return
		case domain.StatePlaying:
		default:
			err = ErrNotPlaying
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err = s.conn.SetPaused(ctx, true); err != nil {
			return
		}
		s.setState(domain.StatePaused)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Resume resumes a paused stream.
func (s *Session) Resume() error {
	var err error
	doErr := s.do(func() {
		if s.st != domain.StatePaused {
			err = ErrNotPaused
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err = s.conn.SetPaused(ctx, false); err != nil {
			return
		}
		s.setState(domain.StatePlaying)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Stop is the full reset: it cancels any in-flight resolution or connection
// attempt, clears the queue, releases the voice connection and returns the
// session to idle. The session itself stays registered until the idle
// timeout expires.
func (s *Session) Stop() error {
	return s.do(func() {
		s.cancelInflight()
		s.queue.Clear()
		s.releaseConnection()
		s.setState(domain.StateIdle)
		s.armIdleTimer()
	})
}

// Leave releases the voice connection and destroys the session.
func (s *Session) Leave() error {
	return s.do(func() {
		s.cancelInflight()
		s.queue.Clear()
		s.releaseConnection()
		s.setState(domain.StateIdle)
		s.destroy()
	})
}

// SetLoopMode sets the loop mode.
func (s *Session) SetLoopMode(mode domain.LoopMode) error {
	return s.do(func() { s.loopMode = mode })
}

// LoopMode returns the current loop mode.
func (s *Session) LoopMode() (domain.LoopMode, error) {
	var mode domain.LoopMode
	err := s.do(func() { mode = s.loopMode })
	return mode, err
}

// SetVolume sets the playback volume in percent and applies it to the
// connection when one is held.
func (s *Session) SetVolume(percent int) error {
	if percent < 0 || percent > MaxVolume {
		return ErrVolumeOutOfRange
	}
	var err error
	doErr := s.do(func() {
		s.volume = percent
		if s.conn == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		err = s.conn.SetVolume(ctx, percent)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Volume returns the current volume in percent.
func (s *Session) Volume() (int, error) {
	var v int
	err := s.do(func() { v = s.volume })
	return v, err
}

// QueueList returns a snapshot of the queue, head first.
func (s *Session) QueueList() ([]*domain.Track, error) {
	var list []*domain.Track
	err := s.do(func() { list = s.queue.List() })
	return list, err
}

// RemoveAt removes the track at the given position. Position 0 is refused
// while a track is playing or paused; skipping is the way to drop it.
func (s *Session) RemoveAt(index int) (*domain.Track, error) {
	var (
		track *domain.Track
		err   error
	)
	doErr := s.do(func() {
		if index == 0 && s.hasActiveTrack() {
			err = ErrIsCurrent
			return
		}
		track, err = s.queue.RemoveAt(index)
		if err == nil {
			s.resyncIfStale()
		}
	})
	if doErr != nil {
		return nil, doErr
	}
	return track, err
}

// Move relocates a queued track. Position 0 is off limits while a track is
// playing or paused.
func (s *Session) Move(from, to int) error {
	var err error
	doErr := s.do(func() {
		if (from == 0 || to == 0) && s.hasActiveTrack() {
			err = ErrIsCurrent
			return
		}
		err = s.queue.Move(from, to)
		if err == nil {
			s.resyncIfStale()
		}
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Clear drops the upcoming tracks. The in-flight track is untouched: while
// playing or paused position 0 survives, otherwise the queue empties fully.
// Returns the number of dropped tracks.
func (s *Session) Clear() (int, error) {
	var n int
	err := s.do(func() {
		if s.hasActiveTrack() {
			n = s.queue.ClearUpcoming()
		} else {
			n = s.queue.Clear()
			s.resyncIfStale()
		}
	})
	return n, err
}

// --- loop internals ---

func (s *Session) setState(st domain.SessionState) {
	if s.st != st {
		slog.Debug("session state change",
			"guild", s.guildID, "from", s.st.String(), "to", st.String())
	}
	s.st = st
	s.stateMirror.Store(int32(st))
}

func (s *Session) hasActiveTrack() bool {
	return s.st == domain.StatePlaying || s.st == domain.StatePaused
}

func (s *Session) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// cancelInflight aborts any pending connect or resolve. Bumping seq makes
// the loop discard the late result when it eventually arrives.
func (s *Session) cancelInflight() {
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.pendingPlay = nil
	s.seq++
}

func (s *Session) releaseConnection() {
	if s.conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.conn.Close(ctx); err != nil {
		slog.Warn("failed to close voice connection", "guild", s.guildID, "error", err)
	}
	s.conn = nil
}

func (s *Session) armIdleTimer() {
	s.stopIdleTimer()
	if s.cfg.IdleTimeout > 0 {
		s.idleTimer = time.NewTimer(s.cfg.IdleTimeout)
	}
}

func (s *Session) stopIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

// startConnect begins establishing the voice connection. The session holds
// at most one connection; this is only entered from Idle with none held.
func (s *Session) startConnect(channelID snowflake.ID) {
	s.setState(domain.StateConnecting)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectionTimeout)
	s.inflight = cancel
	seq := s.nextSeq()

	go func() {
		conn, err := s.transport.Connect(ctx, s.guildID, channelID)
		cancel()
		s.postResult(asyncResult{seq: seq, kind: asyncConnect, conn: conn, err: err})
	}()
}

// startPlayback begins streaming the queue head, resolving its locator
// first when needed. The head is not advanced until resolution and the play
// call succeed or fail; failures drop the head and retry with the next
// entry, bounded by the consecutive-failure cap.
func (s *Session) startPlayback() {
	// Supersede any attempt still in flight so its late result is discarded
	// and its resolve goroutine unblocks.
	s.cancelInflight()

	head := s.queue.Head()
	if head == nil {
		s.enterIdleGrace()
		return
	}
	if s.conn == nil {
		// Connection was lost under us; nothing to stream with.
		s.enterIdleGrace()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResolutionTimeout)
	s.inflight = cancel
	s.pendingPlay = head
	seq := s.nextSeq()
	conn := s.conn

	go func() {
		defer cancel()
		track, err := s.resolveAndPlay(ctx, conn, head)
		s.postResult(asyncResult{seq: seq, kind: asyncPlay, track: track, err: err})
	}()
}

// resolveAndPlay runs off the loop: it refreshes the locator if needed and
// issues the play call.
func (s *Session) resolveAndPlay(ctx context.Context, conn ports.Connection, track *domain.Track) (*domain.Track, error) {
	if track.NeedsResolve() {
		refreshed, err := s.resolver.Refresh(ctx, track)
		if err != nil {
			return track, err
		}
		track = refreshed
	}
	if err := conn.Play(ctx, track.Locator); err != nil {
		return track, err
	}
	return track, nil
}

func (s *Session) postResult(res asyncResult) {
	select {
	case s.results <- res:
	case <-s.done:
		// Session is gone; don't leak a connection that nobody owns.
		if res.conn != nil {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			_ = res.conn.Close(ctx)
			cancel()
		}
	}
}

func (s *Session) handleAsync(res asyncResult) {
	if res.seq != s.seq {
		// A stop or leave cancelled this operation after it was launched.
		if res.conn != nil {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			_ = res.conn.Close(ctx)
			cancel()
		}
		return
	}
	s.inflight = nil

	switch res.kind {
	case asyncConnect:
		s.handleConnectResult(res)
	case asyncPlay:
		s.handlePlayResult(res)
	}
}

func (s *Session) handleConnectResult(res asyncResult) {
	if res.err != nil {
		err := res.err
		if errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrConnectTimeout
		}
		slog.Warn("voice connection failed", "guild", s.guildID, "error", err)
		s.notifyError("Could not join the voice channel: " + err.Error())
		s.setState(domain.StateIdle)
		s.armIdleTimer()
		return
	}

	s.conn = res.conn
	if s.volume != DefaultVolume {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		if err := s.conn.SetVolume(ctx, s.volume); err != nil {
			slog.Warn("failed to apply volume", "guild", s.guildID, "error", err)
		}
		cancel()
	}
	s.startPlayback()
}

func (s *Session) handlePlayResult(res asyncResult) {
	launched := s.pendingPlay
	s.pendingPlay = nil
	if s.queue.Head() != launched {
		// The head changed while this attempt was in flight (skip, remove
		// or clear outside the playing states). Whatever the transport is
		// streaming now belongs to a track that is no longer current.
		s.resyncPlayback()
		return
	}

	if res.err != nil {
		s.handlePlaybackFailure(res.track, res.err)
		return
	}

	// Cache the fresh locator on the head without touching its identity.
	s.queue.ReplaceHead(res.track)
	s.failures = 0
	s.setState(domain.StatePlaying)

	if s.notifier != nil && s.notifyChannel != 0 {
		s.notifier.NowPlaying(s.notifyChannel, res.track)
	}
}

// resyncIfStale restarts playback when a queue mutation displaced the head
// an in-flight play attempt was launched for.
func (s *Session) resyncIfStale() {
	if s.pendingPlay != nil && s.queue.Head() != s.pendingPlay {
		s.resyncPlayback()
	}
}

// resyncPlayback realigns the transport with the queue after a stale play
// attempt: either start the current head, or stop the stray stream and go
// idle when nothing is left.
func (s *Session) resyncPlayback() {
	s.cancelInflight()
	if !s.queue.IsEmpty() {
		s.startPlayback()
		return
	}
	if s.conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		if err := s.conn.Stop(ctx); err != nil {
			slog.Warn("failed to stop stray stream", "guild", s.guildID, "error", err)
		}
		cancel()
	}
	s.enterIdleGrace()
}

// handlePlaybackFailure drops the failed head and tries the next entry.
// After too many consecutive failures the session gives up and goes idle,
// leaving the untried remainder in the queue.
func (s *Session) handlePlaybackFailure(track *domain.Track, err error) {
	title := "track"
	if track != nil {
		title = track.Title
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = domain.ErrTransient
	}
	slog.Warn("dropping unplayable track",
		"guild", s.guildID, "track", title, "error", err)
	s.notifyError("Skipping " + title + ": " + err.Error())

	s.queue.DequeueHead()
	s.failures++
	if s.failures >= s.cfg.MaxResolutionFailures {
		slog.Error("too many consecutive playback failures, going idle",
			"guild", s.guildID, "failures", s.failures)
		s.notifyError("Too many tracks failed in a row, stopping here.")
		s.failures = 0
		s.enterIdleGrace()
		return
	}
	s.startPlayback()
}

func (s *Session) handleStreamEvent(ev ports.StreamEvent) {
	switch ev.Type {
	case ports.StreamStarted:
		slog.Debug("stream started", "guild", s.guildID)

	case ports.StreamFinished:
		if !s.hasActiveTrack() {
			return
		}
		s.queue.CompleteHead(s.loopMode)
		s.startPlayback()

	case ports.StreamFailed:
		if !s.hasActiveTrack() {
			return
		}
		// Transient by definition: report, drop the failed track and move
		// on rather than halting the whole queue.
		s.setState(domain.StateError)
		slog.Warn("stream failed", "guild", s.guildID, "error", ev.Err)
		failed := s.queue.DequeueHead()
		if failed != nil {
			s.notifyError("Playback of " + failed.Title + " failed, moving on.")
		}
		s.failures++
		if s.failures >= s.cfg.MaxResolutionFailures {
			s.failures = 0
			s.notifyError("Too many tracks failed in a row, stopping here.")
			s.enterIdleGrace()
			return
		}
		s.startPlayback()
	}
}

// handleConnectionLost reacts to the transport closing underneath us, for
// example when the bot is kicked from the channel.
func (s *Session) handleConnectionLost() {
	slog.Info("voice connection lost", "guild", s.guildID)
	s.releaseConnection()
	s.cancelInflight()
	s.setState(domain.StateIdle)
	s.armIdleTimer()
}

// enterIdleGrace parks the session in Idle while keeping the connection for
// the grace period, so an enqueue can restart playback without rejoining.
func (s *Session) enterIdleGrace() {
	s.setState(domain.StateIdle)
	s.armIdleTimer()
}

// handleIdleExpiry releases the connection after the grace period. The
// session destroys itself only when the queue is also empty.
func (s *Session) handleIdleExpiry() {
	if s.st != domain.StateIdle {
		return
	}
	s.releaseConnection()
	if s.queue.IsEmpty() {
		s.destroy()
	}
}

func (s *Session) notifyError(message string) {
	if s.notifier != nil && s.notifyChannel != 0 {
		s.notifier.PlaybackError(s.notifyChannel, message)
	}
}

// destroy tears the session down. Runs on the loop; the loop exits on the
// next iteration.
func (s *Session) destroy() {
	select {
	case <-s.done:
		return
	default:
	}
	s.stopIdleTimer()
	s.cancelInflight()
	s.releaseConnection()
	close(s.done)
	if s.onDestroy != nil {
		s.onDestroy(s.guildID)
	}
	slog.Debug("session destroyed", "guild", s.guildID)
}
