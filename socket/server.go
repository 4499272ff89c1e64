package socket

import (
	"log"

	"astromatch_server/hub"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes the Socket.IO server clients use to receive live
// chat events for the rooms they join.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, chatRoomID string) {
		if chatRoomID == "" {
			log.Println("Invalid chatRoomId in join request")
			return
		}
		c.Join(chatRoomID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, chatRoomID string) {
		if chatRoomID != "" {
			c.Leave(chatRoomID)
		}
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("Socket disconnected:", c.ID(), reason)
	})

	return server
}

// Bridge forwards hub message events into the socket rooms until the hub
// subscription is cancelled. Run it in its own goroutine.
func Bridge(server *socketio.Server, h *hub.Hub) func() {
	events, cancel := h.SubscribeAll()
	go func() {
		for ev := range events {
			switch ev.Type {
			case hub.EventMessageInserted:
				server.BroadcastToRoom("/", ev.Message.ChatRoomID, "newMessage", ev.Message)
			case hub.EventMessageUpdated:
				server.BroadcastToRoom("/", ev.Message.ChatRoomID, "messageUpdated", ev.Message)
			}
		}
	}()
	return cancel
}
