package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"snagdef/internal/event"
)

func receive(t *testing.T, ch chan []byte) []byte {
	t.Helper()

	select {
	case message, ok := <-ch:
		require.True(t, ok, "send channel closed unexpectedly")
		return message
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestHub_BroadcastsAlerts(t *testing.T) {
	t.Parallel()
	bus := event.NewBus()
	hub := NewHub(bus)
	go hub.Run()

	c1 := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	c2 := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	hub.register <- c1
	hub.register <- c2

	bus.Publish(event.Event{ID: "1", Type: event.TypeScanStarted, Timestamp: "now"})

	for _, c := range []*Client{c1, c2} {
		var decoded event.Event
		require.NoError(t, json.Unmarshal(receive(t, c.send), &decoded))
		require.Equal(t, event.TypeScanStarted, decoded.Type)
	}
}

func TestHub_SlowClientIsDroppedOthersStillDelivered(t *testing.T) {
	t.Parallel()
	bus := event.NewBus()
	hub := NewHub(bus)
	go hub.Run()

	healthy := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	stuck := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- healthy
	hub.register <- stuck

	// Jam the stuck client's buffer so the next broadcast cannot be queued.
	stuck.send <- []byte("backlog")

	bus.Publish(event.Event{ID: "1", Type: event.TypeContainmentStarted})

	var decoded event.Event
	require.NoError(t, json.Unmarshal(receive(t, healthy.send), &decoded))
	require.Equal(t, event.TypeContainmentStarted, decoded.Type)

	// The stuck client was dropped: after its backlog drains, the hub has
	// closed the channel.
	<-stuck.send
	select {
	case _, open := <-stuck.send:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("stuck client send channel was not closed")
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	t.Parallel()
	hub := NewHub(event.NewBus())
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	select {
	case _, open := <-c.send:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed on unregister")
	}
}
