package routes

import (
	"astromatch_server/controllers"
	"astromatch_server/services"

	"github.com/gorilla/mux"
)

// RegisterCompatibilityRoutes exposes the scoring function under /api/compatibility
func RegisterCompatibilityRoutes(r *mux.Router, compatibilityService *services.CompatibilityService) {
	controller := controllers.NewCompatibilityController(compatibilityService)

	r.HandleFunc("/api/compatibility", controller.Calculate).Methods("POST")
}
