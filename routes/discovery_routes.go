package routes

import (
	"astromatch_server/controllers"
	"astromatch_server/services"

	"github.com/gorilla/mux"
)

// RegisterDiscoveryRoutes sets up the swipe feed routes under /api/discovery
func RegisterDiscoveryRoutes(r *mux.Router, discoveryService *services.DiscoveryService) {
	controller := controllers.NewDiscoveryController(discoveryService)

	discoveryRouter := r.PathPrefix("/api/discovery").Subrouter()

	discoveryRouter.HandleFunc("/current", controller.GetCurrent).Methods("GET")
	discoveryRouter.HandleFunc("/refill", controller.Refill).Methods("POST")
	discoveryRouter.HandleFunc("/like", controller.Like).Methods("POST")
	discoveryRouter.HandleFunc("/pass", controller.Pass).Methods("POST")
	discoveryRouter.HandleFunc("/session", controller.CloseSession).Methods("DELETE")
}
