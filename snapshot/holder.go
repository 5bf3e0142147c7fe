package snapshot

import (
	"sync"
	"sync/atomic"
)

// subscriberBuffer is the per-subscriber event backlog. Slow subscribers
// miss events rather than block a swap.
const subscriberBuffer = 8

// Event reports a published snapshot.
type Event struct {
	Previous *Info `json:"previous,omitempty"`
	Current  Info  `json:"current"`
}

// Holder publishes the active snapshot.
type Holder struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{subs: make(map[int]chan Event)}
}

// Current returns the active snapshot, or nil before the first swap.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap publishes s under the next version and returns the snapshot it
// replaced. s itself is not modified; the published value is a copy
// carrying the version. Concurrent swaps publish and notify in version
// order.
func (h *Holder) Swap(s *Snapshot) (published, previous *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := *s
	c.Version = h.version.Add(1)
	previous = h.current.Swap(&c)

	ev := Event{Current: c.Info()}
	if previous != nil {
		info := previous.Info()
		ev.Previous = &info
	}
	h.broadcastLocked(ev)
	return &c, previous
}

// Subscribe returns a channel of swap events and a function that cancels
// the subscription and closes the channel.
func (h *Holder) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// broadcastLocked must be called with h.mu held.
func (h *Holder) broadcastLocked(ev Event) {
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
