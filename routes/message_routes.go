package routes

import (
	"deptchat_server/controllers"
	"deptchat_server/middleware"
	"deptchat_server/services"

	"github.com/gorilla/mux"
)

// RegisterMessageRoutes sets up the conversation routes under /api/messages
func RegisterMessageRoutes(r *mux.Router, auth *middleware.AuthMiddleware, chat *services.ChatService, messages *services.MessageService, identity *services.IdentityService, groups *services.GroupService) {
	controller := controllers.NewMessageController(chat, messages, identity, groups)

	messageRouter := r.PathPrefix("/api/messages").Subrouter()
	messageRouter.Use(auth.Protect)

	messageRouter.HandleFunc("/send/{receiverId}", controller.HandleSendMessage).Methods("POST")
	messageRouter.HandleFunc("/conversation/{chatWithId}", controller.HandleGetConversation).Methods("GET")
	messageRouter.HandleFunc("/myChats", controller.HandleGetMyChats).Methods("GET")
	messageRouter.HandleFunc("/unreadCounts", controller.HandleGetUnreadCounts).Methods("GET")
	messageRouter.HandleFunc("/group/{groupId}", controller.HandleGetGroupMessages).Methods("GET")
	messageRouter.HandleFunc("/group/{groupId}", controller.HandleSendGroupMessage).Methods("POST")
}
