package services

import (
	"context"
	"fmt"
	"log"

	"deptchat_server/models"
)

// Socket event names emitted by the router and the socket gateway.
const (
	EventReceiveMessage       = "receive_message"
	EventMessageSent          = "message_sent"
	EventGroupMessageReceived = "group_message_received"
	EventNewNotification      = "new_notification"
	EventUpdateOnlineUsers    = "update_online_users"
	EventTyping               = "typing"
	EventError                = "error_message"
)

// The router depends on narrow interfaces instead of the concrete services
// so it can be exercised in tests without DynamoDB or a socket server.

// IdentityDirectory resolves a user id to its account kind and profile view.
type IdentityDirectory interface {
	Resolve(ctx context.Context, userID string) (*models.UserIdentity, error)
}

// ConversationStore persists messages and read-state transitions.
type ConversationStore interface {
	AppendMessage(ctx context.Context, message *models.Message) error
	MarkConversationRead(ctx context.Context, viewerID, counterpartID string) error
}

// GroupDirectory resolves groups and updates their last-message pointer.
type GroupDirectory interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	SetLastMessage(ctx context.Context, groupID, messageID string) error
}

// NotificationStore persists notification records.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

// Presence exposes the live-connection lookup the router needs.
type Presence interface {
	Get(userID string) (Connection, bool)
}

var (
	_ IdentityDirectory = (*IdentityService)(nil)
	_ ConversationStore = (*MessageService)(nil)
	_ GroupDirectory    = (*GroupService)(nil)
	_ NotificationStore = (*NotificationService)(nil)
	_ Presence          = (*PresenceService)(nil)
)

// DeliveryState records how a durable record reached its recipient: pushed
// to a live connection, or queued for the recipient's next pull.
type DeliveryState string

const (
	DeliveredLive DeliveryState = "live"
	QueuedOnly    DeliveryState = "queued"
)

// DirectMessageInput is a validated direct-send request.
type DirectMessageInput struct {
	SenderID   string
	SenderKind string
	ReceiverID string
	Text       string
	Image      string
}

// GroupMessageInput is a validated group-send request.
type GroupMessageInput struct {
	GroupID    string
	SenderID   string
	SenderKind string
	Text       string
	Image      string
}

// DirectReceipt reports the outcome of a direct send. The message is always
// durable when a receipt is returned; Notification is nil when its
// best-effort creation failed.
type DirectReceipt struct {
	Message              *models.Message
	MessageDelivery      DeliveryState
	Notification         *models.Notification
	NotificationDelivery DeliveryState
}

// GroupReceipt reports the outcome of a group send: which members received
// the live emission (sender included when online) and how many notification
// records were written for the other members.
type GroupReceipt struct {
	Message           *models.Message
	Group             *models.Group
	DeliveredTo       []string
	NotificationCount int
	NotifiedLive      []string
}

// GroupMessageEvent is the payload of group_message_received emissions.
type GroupMessageEvent struct {
	GroupID string         `json:"groupId"`
	Message models.Message `json:"message"`
}

// ChatService is the message router: it validates a send, persists it,
// emits to whoever is connected and queues durable notifications for every
// intended recipient regardless of presence. Message durability is the
// primary guarantee; notification creation after a successful persist is
// best-effort and never rolls the message back.
type ChatService struct {
	Identity      IdentityDirectory
	Messages      ConversationStore
	Groups        GroupDirectory
	Notifications NotificationStore
	Presence      Presence
}

// SendDirectMessage routes a direct message. Order of effects: persist,
// emit to the receiver if online, echo message_sent to the sender's own
// connection, then create (and push, if possible) the receiver's
// notification.
func (s *ChatService) SendDirectMessage(ctx context.Context, input DirectMessageInput) (*DirectReceipt, error) {
	if input.Text == "" && input.Image == "" {
		return nil, ErrEmptyMessage
	}

	receiver, err := s.Identity.Resolve(ctx, input.ReceiverID)
	if err == ErrUserNotFound {
		return nil, ErrReceiverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	message := NewMessage(input.SenderID, input.SenderKind, input.ReceiverID, receiver.Kind, "", input.Text, input.Image)
	if err := s.Messages.AppendMessage(ctx, &message); err != nil {
		return nil, err
	}

	receipt := &DirectReceipt{
		Message:              &message,
		MessageDelivery:      QueuedOnly,
		NotificationDelivery: QueuedOnly,
	}

	receiverConn, receiverOnline := s.Presence.Get(input.ReceiverID)
	if receiverOnline {
		receiverConn.Emit(EventReceiveMessage, message)
		receipt.MessageDelivery = DeliveredLive
	}

	// The sender's confirmation carries the persisted message, not an
	// optimistic echo.
	if senderConn, ok := s.Presence.Get(input.SenderID); ok {
		senderConn.Emit(EventMessageSent, message)
	}

	notification := models.Notification{
		RecipientID:   input.ReceiverID,
		RecipientKind: receiver.Kind,
		SenderID:      input.SenderID,
		SenderKind:    input.SenderKind,
		Type:          models.NotificationTypeMessage,
		Title:         s.directNotificationTitle(ctx, input.SenderID),
		Message:       notificationBody(input.Text),
		Metadata: map[string]interface{}{
			"messageId": message.MessageID,
			"senderId":  input.SenderID,
		},
	}
	if err := s.Notifications.Create(ctx, &notification); err != nil {
		log.Printf("❌ Failed to create notification for message %s: %v", message.MessageID, err)
		return receipt, nil
	}
	receipt.Notification = &notification
	if receiverOnline {
		receiverConn.Emit(EventNewNotification, notification)
		receipt.NotificationDelivery = DeliveredLive
	}

	return receipt, nil
}

// SendGroupMessage routes a group message. Membership is re-checked on every
// send. Order of effects: persist, update the group's lastMessage pointer,
// emit to every online member (sender included), then create one
// notification per other member and push to those online.
func (s *ChatService) SendGroupMessage(ctx context.Context, input GroupMessageInput) (*GroupReceipt, error) {
	if input.Text == "" && input.Image == "" {
		return nil, ErrEmptyMessage
	}

	group, err := s.Groups.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(input.SenderID) {
		return nil, ErrNotAMember
	}

	message := NewMessage(input.SenderID, input.SenderKind, "", "", input.GroupID, input.Text, input.Image)
	if err := s.Messages.AppendMessage(ctx, &message); err != nil {
		return nil, err
	}

	receipt := &GroupReceipt{Message: &message, Group: group}

	if err := s.Groups.SetLastMessage(ctx, input.GroupID, message.MessageID); err != nil {
		log.Printf("❌ Failed to update lastMessage for group %s: %v", input.GroupID, err)
	}

	event := GroupMessageEvent{GroupID: input.GroupID, Message: message}
	for _, member := range group.Members {
		if conn, ok := s.Presence.Get(member.UserID); ok {
			conn.Emit(EventGroupMessageReceived, event)
			receipt.DeliveredTo = append(receipt.DeliveredTo, member.UserID)
		}
	}

	var notifications []models.Notification
	for _, member := range group.Members {
		if member.UserID == input.SenderID {
			continue
		}
		notifications = append(notifications, models.Notification{
			RecipientID:   member.UserID,
			RecipientKind: member.Kind,
			SenderID:      input.SenderID,
			SenderKind:    input.SenderKind,
			Type:          models.NotificationTypeGroupMessage,
			Title:         "New message in " + group.Name,
			Message:       notificationBody(input.Text),
			Metadata: map[string]interface{}{
				"groupId":   group.GroupID,
				"messageId": message.MessageID,
			},
		})
	}
	if len(notifications) == 0 {
		return receipt, nil
	}

	if err := s.Notifications.CreateBatch(ctx, notifications); err != nil {
		log.Printf("❌ Failed to create notifications for group message %s: %v", message.MessageID, err)
		return receipt, nil
	}
	receipt.NotificationCount = len(notifications)
	for _, n := range notifications {
		if conn, ok := s.Presence.Get(n.RecipientID); ok {
			conn.Emit(EventNewNotification, n)
			receipt.NotifiedLive = append(receipt.NotifiedLive, n.RecipientID)
		}
	}

	return receipt, nil
}

// EmitNotification persists an externally-built notification and pushes it
// live when the recipient is connected. Durable write first, push second.
func (s *ChatService) EmitNotification(ctx context.Context, n *models.Notification) (DeliveryState, error) {
	if err := s.Notifications.Create(ctx, n); err != nil {
		return QueuedOnly, err
	}
	if conn, ok := s.Presence.Get(n.RecipientID); ok {
		conn.Emit(EventNewNotification, *n)
		return DeliveredLive, nil
	}
	return QueuedOnly, nil
}

// MarkConversationRead clears the viewer's unread state for one counterpart.
func (s *ChatService) MarkConversationRead(ctx context.Context, viewerID, counterpartID string) error {
	return s.Messages.MarkConversationRead(ctx, viewerID, counterpartID)
}

// directNotificationTitle names the sender in the notification title; if the
// sender cannot be resolved the title degrades to a generic one rather than
// dropping the notification.
func (s *ChatService) directNotificationTitle(ctx context.Context, senderID string) string {
	sender, err := s.Identity.Resolve(ctx, senderID)
	if err != nil {
		log.Printf("❌ Failed to resolve sender %s for notification title: %v", senderID, err)
		return "New message"
	}
	return "New message from " + sender.FullName
}

func notificationBody(text string) string {
	if text == "" {
		return "Sent an image"
	}
	return text
}
