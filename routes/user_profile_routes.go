package routes

import (
	"astromatch_server/controllers"
	"astromatch_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService) {
	controller := controllers.NewUserProfileController(userProfileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("", controller.CreateUserProfile).Methods("POST")
	profileRouter.HandleFunc("/me", controller.GetMyProfile).Methods("GET")
	profileRouter.HandleFunc("/me", controller.UpdateMyProfile).Methods("PATCH")
	profileRouter.HandleFunc("/me", controller.DeleteMyProfile).Methods("DELETE")
	profileRouter.HandleFunc("/me/images", controller.AddProfileImage).Methods("POST")
	profileRouter.HandleFunc("/me/images", controller.RemoveProfileImage).Methods("DELETE")
	profileRouter.HandleFunc("/{userId}", controller.GetUserProfileByID).Methods("GET")
}
