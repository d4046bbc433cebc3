// Package stream implements the per-job progress channel: an ordered,
// push-based event feed whose producer never blocks on consumers.
package stream

import (
	"context"
	"sync"

	"tubescribe/types"
)

// Feed buffers one job's progress events in emission order. Publishing
// is non-blocking regardless of listener presence; each subscriber
// receives the full event sequence from the start and its channel is
// closed after the terminal event.
type Feed struct {
	mu     sync.Mutex
	events []types.ProgressEvent
	closed bool
	notify chan struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{notify: make(chan struct{}, 1)}
}

// Publish appends an event. Events after the terminal event are
// dropped, which enforces the exactly-one-terminal-event contract at
// the channel boundary as well as in the coordinator.
func (f *Feed) Publish(ev types.ProgressEvent) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.events = append(f.events, ev)
	if ev.Terminal() {
		f.closed = true
	}
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Closed reports whether the terminal event has been published.
func (f *Feed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Events returns a snapshot of everything published so far.
func (f *Feed) Events() []types.ProgressEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.ProgressEvent, len(f.events))
	copy(out, f.events)
	return out
}

// Subscribe returns a channel that replays the feed from the start and
// then follows it live. The channel closes once the terminal event has
// been delivered, so ranging over it always terminates. Cancelling the
// context closes the channel early and releases the delivery goroutine,
// which is how an abandoned HTTP stream avoids leaking it. A slow
// reader only delays itself; the producer keeps publishing into the
// buffer. At most one concurrent subscriber is supported per feed; a
// second one can miss wakeups and stall.
func (f *Feed) Subscribe(ctx context.Context) <-chan types.ProgressEvent {
	out := make(chan types.ProgressEvent)
	go func() {
		defer close(out)
		next := 0
		for {
			f.mu.Lock()
			pending := f.events[next:]
			done := f.closed
			f.mu.Unlock()

			for _, ev := range pending {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			next += len(pending)

			if done && next == f.len() {
				return
			}
			select {
			case <-f.notify:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *Feed) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}
