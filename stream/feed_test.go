package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubescribe/types"
)

func collect(t *testing.T, ch <-chan types.ProgressEvent) []types.ProgressEvent {
	t.Helper()
	var out []types.ProgressEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, open := <-ch:
			if !open {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("subscriber channel never closed")
		}
	}
}

func TestSubscribeReplaysFromStart(t *testing.T) {
	feed := NewFeed()
	feed.Publish(types.StatusEvent("starting", 5))
	feed.Publish(types.ProgressTick(1, 2, 50, "working", "A"))
	feed.Publish(types.CompleteEvent(&types.ExtractResult{Success: true}))

	events := collect(t, feed.Subscribe(context.Background()))
	require.Len(t, events, 3)
	assert.Equal(t, types.EventStatus, events[0].Type)
	assert.Equal(t, types.EventProgress, events[1].Type)
	assert.Equal(t, types.EventComplete, events[2].Type)
}

func TestSubscribeFollowsLivePublishes(t *testing.T) {
	feed := NewFeed()
	ch := feed.Subscribe(context.Background())

	go func() {
		feed.Publish(types.StatusEvent("starting", 5))
		feed.Publish(types.ProgressTick(1, 1, 100, "done", "A"))
		feed.Publish(types.CompleteEvent(&types.ExtractResult{Success: true}))
	}()

	events := collect(t, ch)
	require.Len(t, events, 3)
	assert.True(t, events[2].Terminal())
}

func TestPublishNeverBlocksWithoutSubscriber(t *testing.T) {
	feed := NewFeed()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			feed.Publish(types.ProgressTick(i, 1000, i/10, "working", "A"))
		}
		feed.Publish(types.ErrorEvent("boom"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked without a subscriber")
	}
	assert.True(t, feed.Closed())
	assert.Len(t, feed.Events(), 1001)
}

func TestEventsAfterTerminalAreDropped(t *testing.T) {
	feed := NewFeed()
	feed.Publish(types.ErrorEvent("boom"))
	feed.Publish(types.StatusEvent("too late", -1))
	feed.Publish(types.CompleteEvent(&types.ExtractResult{}))

	events := feed.Events()
	require.Len(t, events, 1)
	assert.Equal(t, types.EventError, events[0].Type)

	streamed := collect(t, feed.Subscribe(context.Background()))
	require.Len(t, streamed, 1)
}

func TestCancelledSubscriberReleasesDelivery(t *testing.T) {
	feed := NewFeed()
	for i := 0; i < 100; i++ {
		feed.Publish(types.ProgressTick(i, 100, i, "working", "A"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := feed.Subscribe(ctx)

	// Read one event, then walk away like a dropped HTTP client.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	cancel()

	// The delivery goroutine must close the channel instead of blocking
	// forever on the next undelivered event.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after cancellation")
		}
	}
}

func TestSubscribeAfterTerminalStillDelivers(t *testing.T) {
	feed := NewFeed()
	feed.Publish(types.StatusEvent("starting", 5))
	feed.Publish(types.CompleteEvent(&types.ExtractResult{Success: true}))
	require.True(t, feed.Closed())

	events := collect(t, feed.Subscribe(context.Background()))
	require.Len(t, events, 2)
	assert.Equal(t, types.EventComplete, events[1].Type)
}
