package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"deptchat_server/middleware"
	"deptchat_server/services"

	"github.com/gorilla/mux"
)

// MessageController exposes the conversation REST surface. Sends go through
// the same router methods as the socket path, so both surfaces share one set
// of invariants.
type MessageController struct {
	Chat     *services.ChatService
	Messages *services.MessageService
	Identity *services.IdentityService
	Groups   *services.GroupService
}

// NewMessageController initializes the message controller
func NewMessageController(chat *services.ChatService, messages *services.MessageService, identity *services.IdentityService, groups *services.GroupService) *MessageController {
	return &MessageController{Chat: chat, Messages: messages, Identity: identity, Groups: groups}
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// HandleSendMessage - POST /api/messages/send/{receiverId}
func (c *MessageController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	receiverID := mux.Vars(r)["receiverId"]

	var body sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	receipt, err := c.Chat.SendDirectMessage(r.Context(), services.DirectMessageInput{
		SenderID:   user.ID,
		SenderKind: user.Kind,
		ReceiverID: receiverID,
		Text:       body.Text,
		Image:      body.Image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":     "Message sent successfully",
		"messageData": receipt.Message,
	})
}

// HandleGetConversation - GET /api/messages/conversation/{chatWithId}
func (c *MessageController) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	chatWithID := mux.Vars(r)["chatWithId"]

	messages, err := c.Messages.GetConversation(r.Context(), user.ID, chatWithID)
	if err != nil {
		log.Printf("❌ Error fetching conversation: %v", err)
		http.Error(w, `{"error": "Failed to fetch messages"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": messages})
}

// HandleGetMyChats - GET /api/messages/myChats
func (c *MessageController) HandleGetMyChats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	counterparts, err := c.Messages.ChatCounterparts(r.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Error fetching chat partners: %v", err)
		http.Error(w, `{"error": "Failed to fetch chats"}`, http.StatusInternalServerError)
		return
	}

	identities, err := c.Identity.ResolveMany(r.Context(), counterparts)
	if err != nil {
		log.Printf("❌ Error resolving chat partners: %v", err)
		http.Error(w, `{"error": "Failed to fetch chats"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identities)
}

// HandleGetUnreadCounts - GET /api/messages/unreadCounts
func (c *MessageController) HandleGetUnreadCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	counts, err := c.Messages.UnreadCountsBySender(r.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Error fetching unread counts: %v", err)
		http.Error(w, `{"error": "Error fetching unread counts"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"unreadCounts": counts})
}

// HandleGetGroupMessages - GET /api/messages/group/{groupId}
func (c *MessageController) HandleGetGroupMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	groupID := mux.Vars(r)["groupId"]

	group, err := c.Groups.GetGroup(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !group.HasMember(user.ID) {
		writeServiceError(w, services.ErrNotAMember)
		return
	}

	messages, err := c.Messages.GetGroupMessages(r.Context(), groupID)
	if err != nil {
		log.Printf("❌ Error fetching group messages: %v", err)
		http.Error(w, `{"error": "Failed to fetch group messages"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": messages})
}

// HandleSendGroupMessage - POST /api/messages/group/{groupId}
func (c *MessageController) HandleSendGroupMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	groupID := mux.Vars(r)["groupId"]

	var body sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	receipt, err := c.Chat.SendGroupMessage(r.Context(), services.GroupMessageInput{
		GroupID:    groupID,
		SenderID:   user.ID,
		SenderKind: user.Kind,
		Text:       body.Text,
		Image:      body.Image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": receipt.Message})
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, services.ErrReceiverNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, services.ErrNotAMember):
		w.WriteHeader(http.StatusForbidden)
	default:
		log.Printf("❌ Internal error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Server error"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
