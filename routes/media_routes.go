package routes

import (
	"deptchat_server/controllers"
	"deptchat_server/middleware"
	"deptchat_server/services"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up the presigned-URL routes under /api/media
func RegisterMediaRoutes(r *mux.Router, auth *middleware.AuthMiddleware, media *services.MediaService) {
	controller := controllers.NewMediaController(media)

	mediaRouter := r.PathPrefix("/api/media").Subrouter()
	mediaRouter.Use(auth.Protect)

	mediaRouter.HandleFunc("/upload-url", controller.HandleUploadURL).Methods("GET")
	mediaRouter.HandleFunc("/read-url", controller.HandleReadURL).Methods("GET")
}
