package routes

import (
	"deptchat_server/controllers"
	"deptchat_server/middleware"
	"deptchat_server/services"

	"github.com/gorilla/mux"
)

// RegisterNotificationRoutes sets up the notification routes under
// /api/notifications
func RegisterNotificationRoutes(r *mux.Router, auth *middleware.AuthMiddleware, notifications *services.NotificationService) {
	controller := controllers.NewNotificationController(notifications)

	notificationRouter := r.PathPrefix("/api/notifications").Subrouter()
	notificationRouter.Use(auth.Protect)

	notificationRouter.HandleFunc("", controller.HandleList).Methods("GET")
	notificationRouter.HandleFunc("/unread-count", controller.HandleUnreadCount).Methods("GET")
	notificationRouter.HandleFunc("/read-all", controller.HandleMarkAllRead).Methods("PUT")
	notificationRouter.HandleFunc("/{id}/read", controller.HandleMarkRead).Methods("PUT")
	notificationRouter.HandleFunc("/{id}", controller.HandleDelete).Methods("DELETE")
}
