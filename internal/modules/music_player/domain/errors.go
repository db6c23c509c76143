package domain

import "errors"

// Resolution failures. ErrTransient covers network and backend errors,
// including resolution timeouts, and is safe to retry; the other two are
// permanent for the given request.
var (
	ErrNotFound    = errors.New("no track matched the request")
	ErrTransient   = errors.New("track lookup failed")
	ErrUnsupported = errors.New("this source is not supported")
)

// Voice connection failures.
var (
	ErrConnectTimeout   = errors.New("timed out joining the voice channel")
	ErrPermissionDenied = errors.New("not allowed to join the voice channel")
	ErrChannelFull      = errors.New("the voice channel is full")
)

// Queue failures, returned synchronously to the caller.
var (
	ErrQueueFull       = errors.New("the queue is full")
	ErrIndexOutOfRange = errors.New("no track at that queue position")
)

// ErrSessionBusy is returned when removing a session that is not idle.
var ErrSessionBusy = errors.New("the session is not idle")
