package realtime

import "sync"

// DefaultDepth is the channel buffer given to subscribers that do not ask for one.
const DefaultDepth = 16

// Broadcaster publishes typed events to any number of subscriber channels.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[chan T]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs: make(map[chan T]struct{}),
	}
}

// Subscribe registers a new subscriber with the default buffer depth.
func (b *Broadcaster[T]) Subscribe() chan T {
	return b.SubscribeDepth(DefaultDepth)
}

// SubscribeDepth registers a new subscriber whose channel holds up to depth events.
func (b *Broadcaster[T]) SubscribeDepth(depth int) chan T {
	if depth <= 0 {
		depth = 1
	}
	ch := make(chan T, depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown channels are ignored.
func (b *Broadcaster[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to all subscribers and reports how many were skipped.
func (b *Broadcaster[T]) Publish(event T) int {
	dropped := 0
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Drop if the subscriber is lagging; the next event carries fresh state.
			dropped++
		}
	}
	b.mu.Unlock()
	return dropped
}

// Len returns the number of active subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
