package routes

import (
	"astromatch_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for profile image storage operations
func RegisterS3Routes(r *mux.Router) {
	r.HandleFunc("/generate-presigned-url", controllers.GeneratePresignedURL).Methods("POST")
	r.HandleFunc("/get-presigned-read-url", controllers.GetPresignedReadURL).Methods("POST")
	r.HandleFunc("/delete-profile-image", controllers.DeleteProfileImage).Methods("POST")
}
