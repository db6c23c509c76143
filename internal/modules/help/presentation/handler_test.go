package presentation

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/metrolist/metrolist-bot/internal/bot"
)

func TestHelpHandler_ListsCommandsSorted(t *testing.T) {
	handler := NewHelpHandler([]*discordgo.ApplicationCommand{
		{Name: "skip", Description: "Skip the current track"},
		{Name: "play", Description: "Play a track"},
	})
	responder := &bot.MockResponder{}

	if err := handler.Handle(nil, nil, responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if responder.LastResponse == nil {
		t.Fatal("expected response, got nil")
	}
	embeds := responder.LastResponse.Data.Embeds
	if len(embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(embeds))
	}

	description := embeds[0].Description
	if !strings.Contains(description, "`/play` - Play a track") {
		t.Errorf("missing play entry in %q", description)
	}
	if !strings.Contains(description, "`/skip` - Skip the current track") {
		t.Errorf("missing skip entry in %q", description)
	}
	if strings.Index(description, "/play") > strings.Index(description, "/skip") {
		t.Errorf("expected alphabetical order, got %q", description)
	}
}

func TestHelpHandler_ResponderError(t *testing.T) {
	handler := NewHelpHandler(nil)
	expectedErr := errors.New("responder failed")
	responder := &bot.MockResponder{Err: expectedErr}

	err := handler.Handle(nil, nil, responder)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}
