package infrastructure

import (
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"

	"github.com/metrolist/metrolist-bot/internal/modules/music_player/domain"
)

func TestLavalinkQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"never gonna give you up", "ytsearch:never gonna give you up"},
		{"  padded query  ", "ytsearch:padded query"},
		{"https://youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"http://example.com/song", "http://example.com/song"},
		{"www.example.com/song", "www.example.com/song"},
	}

	for _, tt := range tests {
		if got := lavalinkQuery(tt.input); got != tt.want {
			t.Errorf("lavalinkQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFirstTrack(t *testing.T) {
	single := lavalink.Track{Encoded: "single"}
	first := lavalink.Track{Encoded: "first"}
	second := lavalink.Track{Encoded: "second"}

	tests := []struct {
		name        string
		data        lavalink.LoadResultData
		wantEncoded string
		wantErr     error
	}{
		{"single track", single, "single", nil},
		{"playlist collapses to first entry", lavalink.Playlist{Tracks: []lavalink.Track{first, second}}, "first", nil},
		{"empty playlist", lavalink.Playlist{}, "", domain.ErrNotFound},
		{"search collapses to first hit", lavalink.Search{first, second}, "first", nil},
		{"empty search", lavalink.Search{}, "", domain.ErrNotFound},
		{"no match", lavalink.Empty{}, "", domain.ErrNotFound},
		{"common exception is unsupported", lavalink.Exception{Severity: lavalink.SeverityCommon, Message: "blocked"}, "", domain.ErrUnsupported},
		{"fault exception is transient", lavalink.Exception{Severity: lavalink.SeverityFault, Message: "boom"}, "", domain.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, err := firstTrack(&lavalink.LoadResult{Data: tt.data})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if track.Encoded != tt.wantEncoded {
				t.Errorf("expected track %q, got %q", tt.wantEncoded, track.Encoded)
			}
		})
	}
}

func TestConvertTrack(t *testing.T) {
	artwork := "https://img.example.com/cover.jpg"
	track := lavalink.Track{
		Encoded: "encoded-bytes",
		Info: lavalink.TrackInfo{
			Title:      "Song",
			Author:     "Artist",
			Length:     lavalink.Duration(183000),
			ArtworkURL: &artwork,
			IsStream:   false,
		},
	}

	got := convertTrack(track, "artist song")

	if got.Title != "Artist - Song" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.Duration != 183*time.Second {
		t.Errorf("unexpected duration %v", got.Duration)
	}
	if got.Locator != "encoded-bytes" {
		t.Errorf("unexpected locator %q", got.Locator)
	}
	if got.SourceQuery != "artist song" {
		t.Errorf("unexpected source query %q", got.SourceQuery)
	}
	if got.ArtworkURL != artwork {
		t.Errorf("unexpected artwork %q", got.ArtworkURL)
	}
}

func TestConvertTrack_NoAuthor(t *testing.T) {
	track := lavalink.Track{
		Encoded: "x",
		Info:    lavalink.TrackInfo{Title: "Untitled Mix"},
	}

	if got := convertTrack(track, "q"); got.Title != "Untitled Mix" {
		t.Errorf("unexpected title %q", got.Title)
	}
}
