package domain

// Queue is a bounded, ordered sequence of tracks for one guild. Position 0
// is the currently playing track while the owning session is playing or
// paused. Order is insertion order unless explicitly changed with Move.
//
// The queue itself is not safe for concurrent use; the owning session
// serializes all access through its command loop.
type Queue struct {
	tracks []*Track
	maxLen int
}

// NewQueue creates an empty queue holding at most maxLen tracks.
func NewQueue(maxLen int) *Queue {
	return &Queue{
		tracks: make([]*Track, 0),
		maxLen: maxLen,
	}
}

// Len returns the number of tracks in the queue, including the head.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Head returns the track at position 0 without removing it, or nil.
func (q *Queue) Head() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[0]
}

// Enqueue appends a track and returns its resulting position
// (0 = currently playing). Fails with ErrQueueFull beyond the cap.
func (q *Queue) Enqueue(t *Track) (int, error) {
	if q.maxLen > 0 && len(q.tracks) >= q.maxLen {
		return 0, ErrQueueFull
	}
	q.tracks = append(q.tracks, t)
	return len(q.tracks) - 1, nil
}

// DequeueHead removes and returns position 0, or nil if the queue is empty.
func (q *Queue) DequeueHead() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	head := q.tracks[0]
	q.tracks = q.tracks[1:]
	return head
}

// CompleteHead removes the head after a natural completion and re-inserts it
// according to the loop mode: at position 0 for track loop, at the tail for
// queue loop. Returns the completed track, or nil if the queue was empty.
//
// Explicit skips must not go through here; they use Skip, which never
// re-inserts.
func (q *Queue) CompleteHead(mode LoopMode) *Track {
	head := q.DequeueHead()
	if head == nil {
		return nil
	}

	switch mode {
	case LoopModeTrack:
		q.tracks = append([]*Track{head}, q.tracks...)
	case LoopModeQueue:
		q.tracks = append(q.tracks, head)
	}

	return head
}

// ReplaceHead swaps the track at position 0, typically for a copy carrying
// a freshly resolved locator. No-op on an empty queue.
func (q *Queue) ReplaceHead(t *Track) {
	if len(q.tracks) > 0 {
		q.tracks[0] = t
	}
}

// Skip removes up to n tracks from the head and returns them. Loop-mode
// re-insertion is suppressed: a skipped track is gone regardless of mode.
func (q *Queue) Skip(n int) []*Track {
	if n > len(q.tracks) {
		n = len(q.tracks)
	}
	if n <= 0 {
		return nil
	}
	skipped := make([]*Track, n)
	copy(skipped, q.tracks[:n])
	q.tracks = q.tracks[n:]
	return skipped
}

// RemoveAt removes and returns the track at the given position.
func (q *Queue) RemoveAt(index int) (*Track, error) {
	if index < 0 || index >= len(q.tracks) {
		return nil, ErrIndexOutOfRange
	}
	t := q.tracks[index]
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return t, nil
}

// Move relocates the track at from to position to, shifting the rest.
func (q *Queue) Move(from, to int) error {
	if from < 0 || from >= len(q.tracks) || to < 0 || to >= len(q.tracks) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	t := q.tracks[from]
	q.tracks = append(q.tracks[:from], q.tracks[from+1:]...)
	rest := append([]*Track{t}, q.tracks[to:]...)
	q.tracks = append(q.tracks[:to], rest...)
	return nil
}

// Clear empties the queue and returns how many tracks were dropped.
func (q *Queue) Clear() int {
	n := len(q.tracks)
	q.tracks = q.tracks[:0]
	return n
}

// ClearUpcoming drops everything after the head and returns the count.
// Used while a track is playing so position 0 stays intact.
func (q *Queue) ClearUpcoming() int {
	if len(q.tracks) <= 1 {
		return 0
	}
	n := len(q.tracks) - 1
	q.tracks = q.tracks[:1]
	return n
}

// List returns a copy of the queue contents in order.
func (q *Queue) List() []*Track {
	out := make([]*Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}
