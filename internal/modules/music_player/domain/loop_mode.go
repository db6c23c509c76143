package domain

// LoopMode controls what happens to the head track when it finishes naturally.
type LoopMode int

const (
	LoopModeOff   LoopMode = iota // finished tracks are dropped
	LoopModeTrack                 // finished track is re-inserted at position 0
	LoopModeQueue                 // finished track is appended to the tail
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeQueue:
		return "queue"
	default:
		return "off"
	}
}

// ParseLoopMode converts a string to a LoopMode. Unrecognized input maps to
// LoopModeOff.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "track":
		return LoopModeTrack
	case "queue":
		return LoopModeQueue
	default:
		return LoopModeOff
	}
}
