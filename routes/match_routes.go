package routes

import (
	"astromatch_server/controllers"
	"astromatch_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for the matches list under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("", controller.GetMatches).Methods("GET")
}
