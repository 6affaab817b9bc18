// Package reload carries the zero-payload "content changed" signal from the
// file watcher to every open browser session.
package reload

import "sync"

// Broadcaster fans a unit signal out to all current subscribers. Subscribers
// only ever need to hear "something changed" once, so a signal that arrives
// while a subscriber's buffer is full is simply dropped.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan struct{}]struct{}),
	}
}

// Subscribe registers a new listener. It observes only signals sent after
// this call returns.
func (b *Broadcaster) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (b *Broadcaster) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Notify delivers one signal to every subscriber without blocking.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribers reports the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
