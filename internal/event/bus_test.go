package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	ch1, unsub1 := bus.Subscribe()
	ch2, unsub2 := bus.Subscribe()
	defer unsub1()
	defer unsub2()

	bus.Publish(Event{ID: "1", Type: TypeScanStarted})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			require.Equal(t, TypeScanStarted, e.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	// The slow subscriber never drains its channel.
	_, unsubSlow := bus.Subscribe()
	live, unsubLive := bus.Subscribe()
	defer unsubSlow()
	defer unsubLive()

	// Fill the slow subscriber's buffer while keeping the live one drained.
	for i := 0; i < subscriberBuffer; i++ {
		bus.Publish(Event{ID: "fill", Type: TypeThreatsDetected})
		select {
		case <-live:
		case <-time.After(time.Second):
			t.Fatal("live subscriber missed a fill event")
		}
	}

	done := make(chan struct{})
	go func() {
		bus.Publish(Event{ID: "extra", Type: TypeThreatsDetected})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	// The live subscriber still receives events the slow one is dropping.
	select {
	case e := <-live:
		require.Equal(t, "extra", e.ID)
	case <-time.After(time.Second):
		t.Fatal("live subscriber did not receive the extra event")
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	ch, unsub := bus.Subscribe()
	unsub()

	_, open := <-ch
	require.False(t, open)

	// Unsubscribing twice is safe.
	unsub()

	// Publishing after unsubscribe reaches nobody and must not panic.
	bus.Publish(Event{ID: "after", Type: TypeForensicsLogged})
}
