package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// searchPrefix is applied to plain-text queries. Direct URLs are passed to
// Lavalink untouched.
const searchPrefix = "ytsearch"

// lavalinkQuery normalizes user input into a Lavalink identifier.
func lavalinkQuery(input string) string {
	input = strings.TrimSpace(input)
	if isURL(input) {
		return input
	}
	return searchPrefix + ":" + input
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}

// Resolve looks up a query or URL and returns a track descriptor with a
// populated locator. Failures map onto the domain taxonomy: no match is
// domain.ErrNotFound, a source Lavalink rejects is domain.ErrUnsupported,
// and anything network-shaped (including the ctx deadline) is
// domain.ErrTransient.
func (a *LavalinkAdapter) Resolve(ctx context.Context, query string) (*domain.Track, error) {
	node := a.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("%w: no Lavalink node available", domain.ErrTransient)
	}

	result, err := node.LoadTracks(ctx, lavalinkQuery(query))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: lookup timed out", domain.ErrTransient)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}

	track, err := firstTrack(result)
	if err != nil {
		return nil, err
	}
	return convertTrack(track, query), nil
}

// Refresh re-resolves an existing descriptor by its source query and renews
// only the stream locator; title and query identity are preserved.
func (a *LavalinkAdapter) Refresh(ctx context.Context, track *domain.Track) (*domain.Track, error) {
	resolved, err := a.Resolve(ctx, track.SourceQuery)
	if err != nil {
		return nil, err
	}
	return track.WithLocator(resolved.Locator), nil
}

// firstTrack picks the single best candidate out of a load result, the way
// a "play one song" bot wants it: a playlist or search collapses to its
// first entry.
func firstTrack(result *lavalink.LoadResult) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil

	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return lavalink.Track{}, domain.ErrNotFound
		}
		return data.Tracks[0], nil

	case lavalink.Search:
		if len(data) == 0 {
			return lavalink.Track{}, domain.ErrNotFound
		}
		return data[0], nil

	case lavalink.Empty:
		return lavalink.Track{}, domain.ErrNotFound

	case lavalink.Exception:
		if data.Severity == lavalink.SeverityCommon {
			// Common severity means the input itself is the problem, for
			// example a region-locked or unsupported source.
			return lavalink.Track{}, fmt.Errorf("%w: %s", domain.ErrUnsupported, data.Message)
		}
		return lavalink.Track{}, fmt.Errorf("%w: %s", domain.ErrTransient, data.Message)

	default:
		return lavalink.Track{}, domain.ErrNotFound
	}
}

// convertTrack maps a Lavalink track onto the domain descriptor. The
// original query is kept as the track's identity so re-resolution lands on
// the same request.
func convertTrack(track lavalink.Track, sourceQuery string) *domain.Track {
	info := track.Info

	title := info.Title
	if info.Author != "" {
		title = info.Author + " - " + info.Title
	}

	artworkURL := ""
	if info.ArtworkURL != nil {
		artworkURL = *info.ArtworkURL
	}

	return &domain.Track{
		Title:       title,
		Duration:    time.Duration(info.Length) * time.Millisecond,
		SourceQuery: sourceQuery,
		Locator:     track.Encoded,
		ArtworkURL:  artworkURL,
		IsStream:    info.IsStream,
		EnqueuedAt:  time.Now().UTC(),
	}
}
