package domain

// SessionState is the playback session's position in its lifecycle.
//
// Error is transient: the session enters it on a mid-stream transport
// failure and immediately moves on (next track or Idle); it is never a
// resting state observable between commands.
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StatePlaying
	StatePaused
	StateError
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}
