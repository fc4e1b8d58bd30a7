package socket

import (
	"context"
	"errors"
	"log"

	"deptchat_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes the Socket.IO server and binds the event
// channel to the message router and presence registry. Each handler runs on
// its own goroutine; shared state lives behind the presence registry's lock.
func NewSocketServer(chat *services.ChatService, presence *services.PresenceService) *socketio.Server {
	server := socketio.NewServer(nil)

	broadcastOnlineUsers := func() {
		server.BroadcastToNamespace("/", services.EventUpdateOnlineUsers, presence.OnlineUserIDs())
	}

	server.OnConnect("/", func(s socketio.Conn) error {
		log.Println("✅ Socket connected:", s.ID())
		return nil
	})

	// A user announces itself after connecting; a second session for the
	// same user silently replaces the first.
	server.OnEvent("/", EventUserOnline, func(s socketio.Conn, userID string) {
		if userID == "" {
			log.Println("❌ user_online with empty userId")
			return
		}
		presence.Set(userID, s)
		log.Println("✅ User online:", userID)
		broadcastOnlineUsers()
	})

	// Reply with the current set to the caller only.
	server.OnEvent("/", EventGetOnlineUsers, func(s socketio.Conn) {
		s.Emit(services.EventUpdateOnlineUsers, presence.OnlineUserIDs())
	})

	server.OnEvent("/", EventSendMessage, func(s socketio.Conn, payload SendMessagePayload) {
		if err := payload.Validate(); err != nil {
			s.Emit(services.EventError, ErrorEvent{Message: err.Error()})
			return
		}

		_, err := chat.SendDirectMessage(context.Background(), services.DirectMessageInput{
			SenderID:   payload.SenderID,
			SenderKind: payload.SenderType,
			ReceiverID: payload.ReceiverID,
			Text:       payload.Text,
			Image:      payload.Image,
		})
		if err != nil {
			log.Printf("❌ Message error: %v", err)
			s.Emit(services.EventError, ErrorEvent{Message: sendErrorMessage(err, "Failed to send message")})
		}
	})

	server.OnEvent("/", EventSendGroupMessage, func(s socketio.Conn, payload SendGroupMessagePayload) {
		if err := payload.Validate(); err != nil {
			s.Emit(services.EventError, ErrorEvent{Message: err.Error()})
			return
		}

		receipt, err := chat.SendGroupMessage(context.Background(), services.GroupMessageInput{
			GroupID:    payload.GroupID,
			SenderID:   payload.SenderID,
			SenderKind: payload.SenderType,
			Text:       payload.Text,
			Image:      payload.Image,
		})
		if err != nil {
			log.Printf("❌ Group message error: %v", err)
			s.Emit(services.EventError, ErrorEvent{Message: sendErrorMessage(err, "Failed to send group message")})
			return
		}
		log.Printf("✅ Group message sent in %s", receipt.Group.Name)
	})

	// Fire-and-forget read-state transition.
	server.OnEvent("/", EventMarkAsRead, func(s socketio.Conn, payload MarkAsReadPayload) {
		if err := payload.Validate(); err != nil {
			return
		}
		if err := chat.MarkConversationRead(context.Background(), payload.UserID, payload.ContactID); err != nil {
			log.Printf("❌ Error marking messages as read: %v", err)
			return
		}
		log.Printf("✅ Marked messages as read between %s and %s", payload.UserID, payload.ContactID)
	})

	// Typing indicators are relayed to the receiver only, never persisted.
	server.OnEvent("/", EventTypingIn, func(s socketio.Conn, payload TypingPayload) {
		if err := payload.Validate(); err != nil {
			return
		}
		if conn, ok := presence.Get(payload.ReceiverID); ok {
			conn.Emit(services.EventTyping, TypingEvent{SenderID: payload.SenderID, IsTyping: payload.IsTyping})
		}
	})

	server.OnEvent("/", EventSendNotification, func(s socketio.Conn, payload NotificationPayload) {
		if err := payload.Validate(); err != nil {
			log.Printf("❌ Notification error: %v", err)
			return
		}
		notification := payload.Notification()
		if _, err := chat.EmitNotification(context.Background(), &notification); err != nil {
			log.Printf("❌ Notification error: %v", err)
			return
		}
		log.Printf("✅ Notification sent to %s", payload.Recipient)
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	// Remove the presence entry owned by the disconnecting handle. A stale
	// handle that was already replaced by a newer session matches nothing
	// and the disconnect is a no-op.
	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if userID, ok := presence.RemoveByConnection(s.ID()); ok {
			log.Println("❌ User offline:", userID)
			broadcastOnlineUsers()
			return
		}
		log.Println("❌ Socket disconnected:", s.ID())
	})

	return server
}

// sendErrorMessage maps domain errors to the client-facing error text;
// anything else (storage failures) collapses to the generic fallback.
func sendErrorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrReceiverNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrNotAMember):
		return err.Error()
	default:
		return fallback
	}
}
