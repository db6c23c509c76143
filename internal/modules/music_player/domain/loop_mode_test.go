package domain

import "testing"

func TestLoopMode_String(t *testing.T) {
	tests := []struct {
		mode LoopMode
		want string
	}{
		{LoopModeOff, "off"},
		{LoopModeTrack, "track"},
		{LoopModeQueue, "queue"},
		{LoopMode(42), "off"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("LoopMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestParseLoopMode(t *testing.T) {
	tests := []struct {
		input string
		want  LoopMode
	}{
		{"off", LoopModeOff},
		{"track", LoopModeTrack},
		{"queue", LoopModeQueue},
		{"", LoopModeOff},
		{"bogus", LoopModeOff},
	}

	for _, tt := range tests {
		if got := ParseLoopMode(tt.input); got != tt.want {
			t.Errorf("ParseLoopMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
