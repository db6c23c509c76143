package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/metrolist/metrolist-bot/internal/bot"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/ports"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/application/session"
	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x1DB954
	colorError   = 0xE74C3C
)

// queuePageSize is how many upcoming tracks one /queue page shows.
const queuePageSize = 10

// Handlers implements the slash command handlers for the music player.
type Handlers struct {
	registry          *session.Registry
	resolver          ports.TrackResolver
	voiceState        ports.VoiceStateProvider
	resolutionTimeout time.Duration
}

// NewHandlers creates the command handlers.
func NewHandlers(
	registry *session.Registry,
	resolver ports.TrackResolver,
	voiceState ports.VoiceStateProvider,
	resolutionTimeout time.Duration,
) *Handlers {
	return &Handlers{
		registry:          registry,
		resolver:          resolver,
		voiceState:        voiceState,
		resolutionTimeout: resolutionTimeout,
	}
}

// HandlePlay handles /play: resolve the query, join the requester's voice
// channel if needed and enqueue the track.
func (h *Handlers) HandlePlay(s *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user.")
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel.")
	}

	query := stringOption(i, "query")
	if strings.TrimSpace(query) == "" {
		return respondError(r, "Tell me what to play.")
	}

	voiceChannelID, err := h.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil || voiceChannelID == 0 {
		return respondError(r, "You are not connected to a voice channel.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.resolutionTimeout)
	defer cancel()
	track, err := h.resolver.Resolve(ctx, query)
	if err != nil {
		return respondError(r, resolutionMessage(err))
	}
	track.RequesterID = userID
	track.Requester = memberDisplayName(i.Member)

	sess := h.registry.GetOrCreate(guildID)
	pos, err := sess.Play(voiceChannelID, channelID, track)
	if err != nil {
		return respondError(r, err.Error())
	}

	description := fmt.Sprintf("Queued **%s**", track.Title)
	if pos > 0 {
		description += fmt.Sprintf(" at position %d", pos)
	}
	return respondSuccess(r, description+".")
}

// HandleSkip handles /skip.
func (h *Handlers) HandleSkip(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "No music is playing right now.")
	}

	count := int(integerOption(i, "count", 1))
	skipped, next, err := sess.Skip(count)
	if err != nil {
		return respondError(r, err.Error())
	}

	description := fmt.Sprintf("Skipped %d track(s).", len(skipped))
	if next != nil {
		description = fmt.Sprintf("Skipped %d track(s), up next: **%s**.", len(skipped), next.Title)
	}
	return respondSuccess(r, description)
}

// HandlePause handles /pause.
func (h *Handlers) HandlePause(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is playing.")
	}
	if err := sess.Pause(); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Paused.")
}

// HandleResume handles /resume.
func (h *Handlers) HandleResume(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is paused.")
	}
	if err := sess.Resume(); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Resumed.")
}

// HandleStop handles /stop: the full reset.
func (h *Handlers) HandleStop(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing to stop.")
	}
	if err := sess.Stop(); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Stopped and cleared the queue.")
}

// HandleQueue handles /queue.
func (h *Handlers) HandleQueue(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is playing.")
	}

	tracks, err := sess.QueueList()
	if err != nil {
		return respondError(r, err.Error())
	}
	if len(tracks) == 0 {
		return respondSuccess(r, "The queue is empty.")
	}

	var lines []string
	upcoming := tracks
	if active(sess) {
		current := tracks[0]
		lines = append(lines, fmt.Sprintf("🎶 Now playing: **%s** (%s)", current.Title, current.Requester))
		upcoming = tracks[1:]
	}

	page := int(integerOption(i, "page", 1))
	start := (page - 1) * queuePageSize
	if start > len(upcoming) {
		start = len(upcoming)
	}
	end := min(start+queuePageSize, len(upcoming))
	for idx, track := range upcoming[start:end] {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", start+idx+1, track.Title, track.Requester))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Queue",
					Description: strings.Join(lines, "\n"),
					Color:       colorSuccess,
					Footer: &discordgo.MessageEmbedFooter{
						Text: fmt.Sprintf("%d track(s) queued", len(upcoming)),
					},
				},
			},
		},
	})
}

// HandleLoop handles /loop.
func (h *Handlers) HandleLoop(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is playing.")
	}
	mode := domain.ParseLoopMode(stringOption(i, "mode"))
	if err := sess.SetLoopMode(mode); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Loop mode set to **%s**.", mode))
}

// HandleVolume handles /volume.
func (h *Handlers) HandleVolume(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is playing.")
	}
	percent := int(integerOption(i, "percent", session.DefaultVolume))
	if err := sess.SetVolume(percent); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Volume set to %d%%.", percent))
}

// HandleRemove handles /remove. Positions are the numbers /queue shows.
func (h *Handlers) HandleRemove(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is queued.")
	}
	index := h.queueIndex(sess, int(integerOption(i, "position", 1)))
	track, err := sess.RemoveAt(index)
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Removed **%s** from the queue.", track.Title))
}

// HandleMove handles /move.
func (h *Handlers) HandleMove(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is queued.")
	}
	from := h.queueIndex(sess, int(integerOption(i, "from", 1)))
	to := h.queueIndex(sess, int(integerOption(i, "to", 1)))
	if err := sess.Move(from, to); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Moved.")
}

// HandleClear handles /clear.
func (h *Handlers) HandleClear(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "Nothing is queued.")
	}
	n, err := sess.Clear()
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Removed %d track(s) from the queue.", n))
}

// HandleLeave handles /leave.
func (h *Handlers) HandleLeave(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	sess := h.sessionFor(i)
	if sess == nil {
		return respondError(r, "I'm not in a voice channel.")
	}
	if err := sess.Leave(); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Left the voice channel.")
}

// sessionFor returns the guild's session, or nil.
func (h *Handlers) sessionFor(i *discordgo.InteractionCreate) *session.Session {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return nil
	}
	return h.registry.Get(guildID)
}

// queueIndex maps a user-visible 1-based position onto a queue slice index.
// While a track is active, position 0 is the playing track and /queue
// numbers the rest from 1, so the displayed number is the index itself.
func (h *Handlers) queueIndex(sess *session.Session, position int) int {
	if active(sess) {
		return position
	}
	return position - 1
}

func active(sess *session.Session) bool {
	st := sess.State()
	return st == domain.StatePlaying || st == domain.StatePaused
}

func memberDisplayName(m *discordgo.Member) string {
	if m == nil {
		return "unknown"
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

// resolutionMessage turns a resolver failure into a user-facing line.
func resolutionMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "I could not find anything matching that."
	case errors.Is(err, domain.ErrUnsupported):
		return "I can't play from that source."
	default:
		return "The track lookup failed, please try again."
	}
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func integerOption(i *discordgo.InteractionCreate, name string, fallback int64) int64 {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return fallback
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, description, colorSuccess)
}

func respondError(r bot.Responder, description string) error {
	return respondEmbed(r, description, colorError)
}

func respondEmbed(r bot.Responder, description string, color int) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{Description: description, Color: color},
			},
		},
	})
}
