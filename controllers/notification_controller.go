package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"deptchat_server/middleware"
	"deptchat_server/services"

	"github.com/gorilla/mux"
)

// NotificationController exposes the notification query and mutation
// surface. Every operation is scoped to the authenticated recipient.
type NotificationController struct {
	Notifications *services.NotificationService
}

// NewNotificationController initializes the notification controller
func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// HandleList - GET /api/notifications?limit=&skip=
func (c *NotificationController) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	limit := parseQueryInt(r, "limit", 20)
	skip := parseQueryInt(r, "skip", 0)

	notifications, err := c.Notifications.ListByRecipient(r.Context(), user.ID, user.Kind, limit, skip)
	if err != nil {
		log.Printf("❌ Error fetching notifications: %v", err)
		http.Error(w, `{"error": "Failed to fetch notifications"}`, http.StatusInternalServerError)
		return
	}

	unreadCount, err := c.Notifications.UnreadCount(r.Context(), user.ID, user.Kind)
	if err != nil {
		log.Printf("❌ Error counting unread notifications: %v", err)
		http.Error(w, `{"error": "Failed to fetch notifications"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": notifications,
		"unreadCount":   unreadCount,
	})
}

// HandleUnreadCount - GET /api/notifications/unread-count
func (c *NotificationController) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	count, err := c.Notifications.UnreadCount(r.Context(), user.ID, user.Kind)
	if err != nil {
		log.Printf("❌ Error counting unread notifications: %v", err)
		http.Error(w, `{"error": "Failed to count notifications"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": count})
}

// HandleMarkRead - PUT /api/notifications/{id}/read
func (c *NotificationController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	notificationID := mux.Vars(r)["id"]

	notification, err := c.Notifications.MarkRead(r.Context(), user.ID, notificationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Marked as read",
		"notification": notification,
	})
}

// HandleMarkAllRead - PUT /api/notifications/read-all
func (c *NotificationController) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := c.Notifications.MarkAllRead(r.Context(), user.ID, user.Kind); err != nil {
		log.Printf("❌ Error marking all notifications as read: %v", err)
		http.Error(w, `{"error": "Failed to mark notifications as read"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "All notifications marked as read"})
}

// HandleDelete - DELETE /api/notifications/{id}
func (c *NotificationController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	notificationID := mux.Vars(r)["id"]

	if err := c.Notifications.Delete(r.Context(), user.ID, notificationID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Notification deleted"})
}

func parseQueryInt(r *http.Request, name string, fallback int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
