package models

import "strings"

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"

// GSIs on the Messages table used for cross-conversation queries
const (
	MessagesSenderIndex   = "sender-index"
	MessagesReceiverIndex = "receiver-index"
)

// GroupConversationPrefix namespaces group partitions so they can never
// collide with a direct-pair key.
const GroupConversationPrefix = "GROUP#"

// Message is a single chat message. Exactly one of ReceiverID or GroupID is
// set: direct messages carry a receiver, group messages carry a group. The
// partition key is the conversation id (sorted pair key for direct messages,
// GROUP#<groupId> for group messages) and the sort key is createdAt, so a
// conversation's history comes back in send order.
type Message struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
	MessageID      string `dynamodbav:"messageId" json:"messageId"`
	SenderID       string `dynamodbav:"senderId" json:"senderId"`
	SenderKind     string `dynamodbav:"senderKind" json:"senderKind"`
	ReceiverID     string `dynamodbav:"receiverId,omitempty" json:"receiverId,omitempty"`
	ReceiverKind   string `dynamodbav:"receiverKind,omitempty" json:"receiverKind,omitempty"`
	GroupID        string `dynamodbav:"groupId,omitempty" json:"groupId,omitempty"`
	Text           string `dynamodbav:"text" json:"text"`
	Image          string `dynamodbav:"image,omitempty" json:"image,omitempty"`
	// Read is only meaningful for direct messages; group messages carry no
	// read state.
	Read bool `dynamodbav:"read" json:"read"`
}

// IsGroup reports whether the message is addressed to a group.
func (m Message) IsGroup() bool {
	return m.GroupID != ""
}

// DirectConversationID builds the canonical partition key for a direct
// conversation. The two user ids are sorted so both parties compute the same
// key.
func DirectConversationID(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + "#" + userB
}

// GroupConversationID builds the partition key for a group conversation.
func GroupConversationID(groupID string) string {
	return GroupConversationPrefix + groupID
}
