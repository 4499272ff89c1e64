package routes

import (
	"astromatch_server/controllers"
	"astromatch_server/hub"
	"astromatch_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, profileService *services.UserProfileService, h *hub.Hub) {
	controller := controllers.NewChatController(chatService, profileService, h)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/{chatRoomId}", controller.OpenChat).Methods("GET")
	chatRouter.HandleFunc("/{chatRoomId}", controller.CloseChat).Methods("DELETE")
	chatRouter.HandleFunc("/{chatRoomId}/message", controller.SendMessage).Methods("POST")
	chatRouter.HandleFunc("/{chatRoomId}/mark-as-read", controller.MarkAsRead).Methods("POST")
}
