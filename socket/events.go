package socket

import (
	"errors"

	"deptchat_server/models"
)

// Inbound event names handled by the gateway.
const (
	EventUserOnline       = "user_online"
	EventGetOnlineUsers   = "get_online_users"
	EventSendMessage      = "send_message"
	EventSendGroupMessage = "send_group_message"
	EventMarkAsRead       = "mark_as_read"
	EventTypingIn         = "typing"
	EventSendNotification = "send_notification"
)

// Every inbound payload is a typed struct validated at the boundary; the
// gateway never trusts caller-supplied shape.

// SendMessagePayload is the send_message event body.
type SendMessagePayload struct {
	SenderID   string `json:"senderId"`
	SenderType string `json:"senderType"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
	Image      string `json:"image"`
}

// Validate checks the required addressing fields. Emptiness of text+image is
// the router's concern, not the boundary's.
func (p SendMessagePayload) Validate() error {
	if p.SenderID == "" || p.ReceiverID == "" {
		return errors.New("senderId and receiverId are required")
	}
	return validateKind(p.SenderType)
}

// SendGroupMessagePayload is the send_group_message event body.
type SendGroupMessagePayload struct {
	GroupID    string `json:"groupId"`
	SenderID   string `json:"senderId"`
	SenderType string `json:"senderType"`
	Text       string `json:"text"`
	Image      string `json:"image"`
}

func (p SendGroupMessagePayload) Validate() error {
	if p.GroupID == "" || p.SenderID == "" {
		return errors.New("groupId and senderId are required")
	}
	return validateKind(p.SenderType)
}

// MarkAsReadPayload is the mark_as_read event body.
type MarkAsReadPayload struct {
	UserID    string `json:"userId"`
	ContactID string `json:"contactId"`
}

func (p MarkAsReadPayload) Validate() error {
	if p.UserID == "" || p.ContactID == "" {
		return errors.New("userId and contactId are required")
	}
	return nil
}

// TypingPayload is the typing event body.
type TypingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

func (p TypingPayload) Validate() error {
	if p.SenderID == "" || p.ReceiverID == "" {
		return errors.New("senderId and receiverId are required")
	}
	return nil
}

// TypingEvent is the typing relay sent to the receiver.
type TypingEvent struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

// NotificationPayload is the send_notification event body, used by external
// flows (book workflow, group invites, announcements) to push a durable
// notification through the core.
type NotificationPayload struct {
	Recipient     string                 `json:"recipient"`
	RecipientType string                 `json:"recipientType"`
	Sender        string                 `json:"sender"`
	SenderType    string                 `json:"senderType"`
	Type          string                 `json:"type"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	Link          string                 `json:"link"`
	Metadata      map[string]interface{} `json:"metadata"`
}

func (p NotificationPayload) Validate() error {
	if p.Recipient == "" || p.Type == "" || p.Title == "" || p.Message == "" {
		return errors.New("recipient, type, title and message are required")
	}
	return validateKind(p.RecipientType)
}

// Notification converts the payload to its storage model.
func (p NotificationPayload) Notification() models.Notification {
	return models.Notification{
		RecipientID:   p.Recipient,
		RecipientKind: p.RecipientType,
		SenderID:      p.Sender,
		SenderKind:    p.SenderType,
		Type:          p.Type,
		Title:         p.Title,
		Message:       p.Message,
		Link:          p.Link,
		Metadata:      p.Metadata,
	}
}

// ErrorEvent is the error_message body sent back to the initiator.
type ErrorEvent struct {
	Message string `json:"message"`
}

func validateKind(kind string) error {
	if kind != models.KindStudent && kind != models.KindLecturer {
		return errors.New("user type must be Student or Lecturer")
	}
	return nil
}
