package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track describes one requested song. Its identity is Title plus SourceQuery
// and never changes after creation. Locator is the transport-level stream
// reference; it is populated lazily by the resolver and may expire, in which
// case it is refreshed without touching the rest of the descriptor.
type Track struct {
	Title       string
	Duration    time.Duration // zero when unknown
	SourceQuery string        // the query or URL the track was requested with
	Locator     string        // opaque stream reference, empty until resolved
	ArtworkURL  string
	IsStream    bool
	RequesterID snowflake.ID
	Requester   string // display name of the requester
	EnqueuedAt  time.Time
}

// NewTrack creates a Track for the given request.
func NewTrack(title, sourceQuery string, duration time.Duration, requesterID snowflake.ID, requester string) *Track {
	return &Track{
		Title:       title,
		Duration:    duration,
		SourceQuery: sourceQuery,
		RequesterID: requesterID,
		Requester:   requester,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// NeedsResolve reports whether the track has no usable stream locator yet.
func (t *Track) NeedsResolve() bool {
	return t.Locator == ""
}

// WithLocator returns a copy of the track with a fresh stream locator.
// Everything that identifies the track is carried over unchanged.
func (t *Track) WithLocator(locator string) *Track {
	clone := *t
	clone.Locator = locator
	return &clone
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
