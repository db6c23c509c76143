package domain

import (
	"errors"
	"testing"
)

func track(title string) *Track {
	return &Track{Title: title, SourceQuery: title}
}

func titles(tracks []*Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.Title
	}
	return out
}

func assertOrder(t *testing.T, q *Queue, want ...string) {
	t.Helper()
	got := titles(q.List())
	if len(got) != len(want) {
		t.Fatalf("expected queue %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected queue %v, got %v", want, got)
		}
	}
}

func TestNewQueue(t *testing.T) {
	q := NewQueue(10)

	if q == nil {
		t.Fatal("NewQueue returned nil")
	}
	if !q.IsEmpty() {
		t.Errorf("expected empty queue, got length %d", q.Len())
	}
	if q.Head() != nil {
		t.Error("expected nil head on empty queue")
	}
}

func TestQueue_EnqueuePreservesInsertionOrder(t *testing.T) {
	q := NewQueue(10)

	for i, title := range []string{"a", "b", "c"} {
		pos, err := q.Enqueue(track(title))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pos != i {
			t.Errorf("expected position %d, got %d", i, pos)
		}
	}

	assertOrder(t, q, "a", "b", "c")
}

func TestQueue_EnqueueFullQueue(t *testing.T) {
	q := NewQueue(2)
	q.Enqueue(track("a"))
	q.Enqueue(track("b"))

	_, err := q.Enqueue(track("c"))
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	// Order is unchanged after the rejection
	assertOrder(t, q, "a", "b")

	// Removing a track makes room again
	q.DequeueHead()
	if _, err := q.Enqueue(track("c")); err != nil {
		t.Errorf("unexpected error after dequeue: %v", err)
	}
}

func TestQueue_EnqueueUnbounded(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < 500; i++ {
		if _, err := q.Enqueue(track("x")); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if q.Len() != 500 {
		t.Errorf("expected length 500, got %d", q.Len())
	}
}

func TestQueue_DequeueHead(t *testing.T) {
	q := NewQueue(10)

	if got := q.DequeueHead(); got != nil {
		t.Errorf("expected nil from empty queue, got %v", got)
	}

	q.Enqueue(track("a"))
	q.Enqueue(track("b"))

	if got := q.DequeueHead(); got.Title != "a" {
		t.Errorf("expected a, got %v", got.Title)
	}
	assertOrder(t, q, "b")
}

func TestQueue_CompleteHead(t *testing.T) {
	tests := []struct {
		name string
		mode LoopMode
		want []string
	}{
		{"off drops the head", LoopModeOff, []string{"b", "c"}},
		{"track re-inserts at the front", LoopModeTrack, []string{"a", "b", "c"}},
		{"queue appends to the tail", LoopModeQueue, []string{"b", "c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue(10)
			q.Enqueue(track("a"))
			q.Enqueue(track("b"))
			q.Enqueue(track("c"))

			completed := q.CompleteHead(tt.mode)
			if completed == nil || completed.Title != "a" {
				t.Fatalf("expected completed track a, got %v", completed)
			}
			assertOrder(t, q, tt.want...)
		})
	}
}

func TestQueue_CompleteHeadEmpty(t *testing.T) {
	q := NewQueue(10)
	if got := q.CompleteHead(LoopModeQueue); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestQueue_QueueLoopFullCycle(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(track("a"))
	q.Enqueue(track("b"))
	q.Enqueue(track("c"))

	// Three natural completions under queue loop restore the original order
	for i := 0; i < 3; i++ {
		q.CompleteHead(LoopModeQueue)
	}
	assertOrder(t, q, "a", "b", "c")
}

func TestQueue_ReplaceHead(t *testing.T) {
	q := NewQueue(10)
	q.ReplaceHead(track("x")) // no-op on empty

	q.Enqueue(track("a"))
	q.Enqueue(track("b"))
	q.ReplaceHead(track("a2"))
	assertOrder(t, q, "a2", "b")
}

func TestQueue_Skip(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		wantSkipped []string
		wantLeft    []string
	}{
		{"one", 1, []string{"a"}, []string{"b", "c"}},
		{"several", 2, []string{"a", "b"}, []string{"c"}},
		{"more than queued", 5, []string{"a", "b", "c"}, nil},
		{"zero", 0, nil, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue(10)
			q.Enqueue(track("a"))
			q.Enqueue(track("b"))
			q.Enqueue(track("c"))

			skipped := titles(q.Skip(tt.n))
			if len(skipped) != len(tt.wantSkipped) {
				t.Fatalf("expected skipped %v, got %v", tt.wantSkipped, skipped)
			}
			for i := range skipped {
				if skipped[i] != tt.wantSkipped[i] {
					t.Fatalf("expected skipped %v, got %v", tt.wantSkipped, skipped)
				}
			}
			assertOrder(t, q, tt.wantLeft...)
		})
	}
}

func TestQueue_SkipNeverReinserts(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(track("a"))
	q.Enqueue(track("b"))

	// Skipping ignores the loop mode entirely, so "a" must not come back
	q.Skip(1)
	assertOrder(t, q, "b")
}

func TestQueue_RemoveAt(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(track("a"))
	q.Enqueue(track("b"))
	q.Enqueue(track("c"))

	removed, err := q.RemoveAt(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Title != "b" {
		t.Errorf("expected b, got %s", removed.Title)
	}
	assertOrder(t, q, "a", "c")

	for _, index := range []int{-1, 2, 10} {
		if _, err := q.RemoveAt(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("index %d: expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
}

func TestQueue_Move(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"backwards", 2, 0, []string{"c", "a", "b"}},
		{"forwards", 0, 2, []string{"b", "c", "a"}},
		{"same position", 1, 1, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue(10)
			q.Enqueue(track("a"))
			q.Enqueue(track("b"))
			q.Enqueue(track("c"))

			if err := q.Move(tt.from, tt.to); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertOrder(t, q, tt.want...)
		})
	}
}

func TestQueue_MoveOutOfRange(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(track("a"))

	for _, pair := range [][2]int{{-1, 0}, {0, 1}, {3, 0}} {
		if err := q.Move(pair[0], pair[1]); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("move %v: expected ErrIndexOutOfRange, got %v", pair, err)
		}
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(track("a"))
	q.Enqueue(track("b"))

	if n := q.Clear(); n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
	if !q.IsEmpty() {
		t.Error("expected empty queue after Clear")
	}
}

func TestQueue_ClearUpcoming(t *testing.T) {
	q := NewQueue(10)

	if n := q.ClearUpcoming(); n != 0 {
		t.Errorf("expected 0 on empty queue, got %d", n)
	}

	q.Enqueue(track("a"))
	q.Enqueue(track("b"))
	q.Enqueue(track("c"))

	if n := q.ClearUpcoming(); n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
	assertOrder(t, q, "a")
}

func TestQueue_ListReturnsCopy(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(track("a"))

	list := q.List()
	list[0] = track("mutated")

	if q.Head().Title != "a" {
		t.Error("List must not expose the internal slice")
	}
}
