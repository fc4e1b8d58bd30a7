package models

// NotificationsTable is the DynamoDB table name for notifications
const NotificationsTable = "Notifications"

// Notification types. The messaging core only produces "message" and
// "group_message"; the remaining values are created by external flows (book
// workflow, group management, announcements) and delivered through the same
// emission path.
const (
	NotificationTypeMessage      = "message"
	NotificationTypeGroupMessage = "group_message"
	NotificationTypeGroupInvite  = "group_invite"
	NotificationTypeBookRequest  = "book_request"
	NotificationTypeBookApproved = "book_approved"
	NotificationTypeBookDeclined = "book_declined"
	NotificationTypeAnnouncement = "announcement"
)

// Notification is a durable per-recipient record of an event. The partition
// key is the recipient id and the sort key the notification id, so ownership
// checks on mutation fall out of the key shape.
type Notification struct {
	RecipientID    string                 `dynamodbav:"recipientId" json:"recipientId"`
	NotificationID string                 `dynamodbav:"notificationId" json:"notificationId"`
	RecipientKind  string                 `dynamodbav:"recipientType" json:"recipientType"`
	SenderID       string                 `dynamodbav:"senderId,omitempty" json:"senderId,omitempty"`
	SenderKind     string                 `dynamodbav:"senderType,omitempty" json:"senderType,omitempty"`
	Type           string                 `dynamodbav:"type" json:"type"`
	Title          string                 `dynamodbav:"title" json:"title"`
	Message        string                 `dynamodbav:"message" json:"message"`
	Link           string                 `dynamodbav:"link,omitempty" json:"link,omitempty"`
	IsRead         bool                   `dynamodbav:"isRead" json:"isRead"`
	Metadata       map[string]interface{} `dynamodbav:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt      string                 `dynamodbav:"createdAt" json:"createdAt"`
}
