// Package hub fans chat message events out to in-process subscribers. It is the
// live-subscription surface behind both chat sessions and the socket server.
package hub

import (
	"sync"

	"astromatch_server/models"
)

// EventType distinguishes message inserts from updates
type EventType string

const (
	EventMessageInserted EventType = "message_inserted"
	EventMessageUpdated  EventType = "message_updated"
)

// MessageEvent is delivered at-least-once; consumers deduplicate by message id
type MessageEvent struct {
	Type    EventType
	Message models.Message
}

type subscriber struct {
	roomID string // "" subscribes to every room
	ch     chan MessageEvent
}

type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func New() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe returns a channel of events for one chat room and a cancel function
// that must be called when the screen owning the subscription closes.
func (h *Hub) Subscribe(roomID string) (<-chan MessageEvent, func()) {
	return h.subscribe(roomID)
}

// SubscribeAll returns a channel of events for every room. Used by the socket
// bridge to broadcast into socket.io rooms.
func (h *Hub) SubscribeAll() (<-chan MessageEvent, func()) {
	return h.subscribe("")
}

func (h *Hub) subscribe(roomID string) (<-chan MessageEvent, func()) {
	sub := &subscriber{roomID: roomID, ch: make(chan MessageEvent, 32)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers an event to all subscribers of the message's room. Slow
// subscribers are skipped rather than blocking the publisher; missed inserts
// surface on the next full load.
func (h *Hub) Publish(ev MessageEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.roomID != "" && sub.roomID != ev.Message.ChatRoomID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
