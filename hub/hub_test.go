package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astromatch_server/models"
)

func TestHubRoutesByRoom(t *testing.T) {
	h := New()

	room1, cancel1 := h.Subscribe("room-1")
	defer cancel1()
	all, cancelAll := h.SubscribeAll()
	defer cancelAll()

	h.Publish(MessageEvent{Type: EventMessageInserted, Message: models.Message{ChatRoomID: "room-1", MessageID: "a"}})
	h.Publish(MessageEvent{Type: EventMessageInserted, Message: models.Message{ChatRoomID: "room-2", MessageID: "b"}})

	select {
	case ev := <-room1:
		assert.Equal(t, "a", ev.Message.MessageID)
	case <-time.After(time.Second):
		t.Fatal("room subscriber received nothing")
	}
	select {
	case ev := <-room1:
		t.Fatalf("room subscriber got event for another room: %s", ev.Message.MessageID)
	default:
	}

	require.Equal(t, "a", (<-all).Message.MessageID)
	require.Equal(t, "b", (<-all).Message.MessageID)
}

func TestHubCancelStopsDelivery(t *testing.T) {
	h := New()

	events, cancel := h.Subscribe("room-1")
	cancel()
	cancel() // idempotent

	h.Publish(MessageEvent{Type: EventMessageInserted, Message: models.Message{ChatRoomID: "room-1", MessageID: "a"}})

	_, open := <-events
	assert.False(t, open)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := New()

	_, cancel := h.Subscribe("room-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(MessageEvent{Type: EventMessageInserted, Message: models.Message{ChatRoomID: "room-1"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
