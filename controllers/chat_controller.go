package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"astromatch_server/hub"
	"astromatch_server/middleware"
	"astromatch_server/models"
	"astromatch_server/services"

	"github.com/gorilla/mux"
)

// ChatController owns one live chat session per (user, room) pair for as long
// as that chat screen is open.
type ChatController struct {
	ChatService    *services.ChatService
	ProfileService *services.UserProfileService
	Hub            *hub.Hub

	mu       sync.Mutex
	sessions map[string]*services.ChatSession
}

// NewChatController initializes the chat controller
func NewChatController(chatService *services.ChatService, profileService *services.UserProfileService, h *hub.Hub) *ChatController {
	return &ChatController{
		ChatService:    chatService,
		ProfileService: profileService,
		Hub:            h,
		sessions:       make(map[string]*services.ChatSession),
	}
}

func sessionKey(userID, roomID string) string {
	return userID + "|" + roomID
}

type chatPayload struct {
	ChatRoom    *models.ChatRoom          `json:"chatRoom"`
	Counterpart *services.ChatCounterpart `json:"matchedUser"`
	Match       *models.Match             `json:"matchDetails"`
	Messages    []models.Message          `json:"messages"`
}

// OpenChat loads (or reloads) the chat screen: room, counterpart, match
// metadata and transcript, and starts the live subscription.
func (c *ChatController) OpenChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Not authenticated"}`, http.StatusUnauthorized)
		return
	}
	roomID := mux.Vars(r)["chatRoomId"]

	c.mu.Lock()
	session, exists := c.sessions[sessionKey(userID, roomID)]
	if !exists {
		session = services.NewChatSession(c.ChatService, c.ProfileService, c.Hub, userID, roomID)
		c.sessions[sessionKey(userID, roomID)] = session
	}
	c.mu.Unlock()

	if err := session.Load(r.Context()); err != nil {
		c.dropSession(userID, roomID)
		if errors.Is(err, services.ErrChatAccessDenied) {
			http.Error(w, `{"error": "You do not have access to this chat room"}`, http.StatusForbidden)
			return
		}
		log.Printf("Failed to load chat %s for %s: %v", roomID, userID, err)
		http.Error(w, `{"error": "Failed to load chat"}`, http.StatusNotFound)
		return
	}

	payload := chatPayload{
		ChatRoom:    session.Room(),
		Counterpart: session.Counterpart(),
		Match:       session.Match(),
		Messages:    session.Messages(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// SendMessage inserts a new message into the room. Blank content is a no-op.
func (c *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Not authenticated"}`, http.StatusUnauthorized)
		return
	}
	roomID := mux.Vars(r)["chatRoomId"]

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	session := c.sessions[sessionKey(userID, roomID)]
	c.mu.Unlock()
	if session == nil {
		http.Error(w, `{"error": "Chat is not open"}`, http.StatusConflict)
		return
	}

	if err := session.Send(r.Context(), payload.Content); err != nil {
		log.Printf("Failed to send message in %s: %v", roomID, err)
		http.Error(w, `{"error": "Failed to send message"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// MarkAsRead flips the read flag on unread counterpart messages in the room
func (c *ChatController) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Not authenticated"}`, http.StatusUnauthorized)
		return
	}
	roomID := mux.Vars(r)["chatRoomId"]

	if err := c.ChatService.MarkMessagesRead(r.Context(), roomID, userID); err != nil {
		http.Error(w, `{"error": "Failed to mark messages as read"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success", "message": "Messages marked as read"})
}

// CloseChat tears down the live session when the chat screen closes
func (c *ChatController) CloseChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Not authenticated"}`, http.StatusUnauthorized)
		return
	}
	roomID := mux.Vars(r)["chatRoomId"]

	c.dropSession(userID, roomID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func (c *ChatController) dropSession(userID, roomID string) {
	c.mu.Lock()
	session := c.sessions[sessionKey(userID, roomID)]
	delete(c.sessions, sessionKey(userID, roomID))
	c.mu.Unlock()
	if session != nil {
		session.Close()
	}
}
