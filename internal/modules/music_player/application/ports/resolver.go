package ports

import (
	"context"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

// TrackResolver turns a free-text query or URL into a playable track.
//
// Implementations report failures through the domain taxonomy:
// domain.ErrNotFound when nothing matched, domain.ErrUnsupported for
// disallowed sources, and domain.ErrTransient for network or backend
// errors (including timeouts), which are safe to retry. Calls must respect
// the deadline on ctx.
type TrackResolver interface {
	// Resolve looks up the query and returns a track descriptor with a
	// populated stream locator.
	Resolve(ctx context.Context, query string) (*domain.Track, error)

	// Refresh re-resolves an already known track whose locator is missing
	// or expired. The returned track keeps its identity (title and source
	// query); only the locator is renewed.
	Refresh(ctx context.Context, track *domain.Track) (*domain.Track, error)
}
