package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"deptchat_server/models"
	"deptchat_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// MessageService is the conversation store: persisted direct and group
// messages keyed by conversation, plus the derived queries the REST surface
// needs (history, chat partners, unread counts) and the batch read-state
// transition.
type MessageService struct {
	Dynamo *DynamoService
}

// NewMessage builds a message ready for persistence: server-assigned id and
// creation timestamp, unread by default. The conversation id is derived from
// the addressing fields.
func NewMessage(senderID, senderKind, receiverID, receiverKind, groupID, text, image string) models.Message {
	msg := models.Message{
		MessageID:  uuid.New().String(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		SenderID:   senderID,
		SenderKind: senderKind,
		Text:       text,
		Image:      image,
	}
	if groupID != "" {
		msg.GroupID = groupID
		msg.ConversationID = models.GroupConversationID(groupID)
	} else {
		msg.ReceiverID = receiverID
		msg.ReceiverKind = receiverKind
		msg.ConversationID = models.DirectConversationID(senderID, receiverID)
	}
	return msg
}

// AppendMessage persists a message.
func (s *MessageService) AppendMessage(ctx context.Context, message *models.Message) error {
	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

// GetConversation fetches the direct-message history between two users in
// send order. The sort key is createdAt, so the query returns them ordered
// already.
func (s *MessageService) GetConversation(ctx context.Context, userID, chatWithID string) ([]models.Message, error) {
	return s.queryConversation(ctx, models.DirectConversationID(userID, chatWithID))
}

// GetGroupMessages fetches a group's message history in send order.
func (s *MessageService) GetGroupMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	return s.queryConversation(ctx, models.GroupConversationID(groupID))
}

func (s *MessageService) queryConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	keyCondition := "conversationId = :conversationId"
	expressionValues := map[string]types.AttributeValue{
		":conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil, 0, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// ChatCounterparts returns the distinct set of user ids the given user has
// exchanged direct messages with, in no particular order.
func (s *MessageService) ChatCounterparts(ctx context.Context, userID string) ([]string, error) {
	sent, err := s.queryByIndex(ctx, models.MessagesSenderIndex, "senderId", userID)
	if err != nil {
		return nil, err
	}
	received, err := s.queryByIndex(ctx, models.MessagesReceiverIndex, "receiverId", userID)
	if err != nil {
		return nil, err
	}
	return uniqueCounterparts(append(sent, received...), userID), nil
}

// UnreadCountsBySender returns, for the given viewer, the number of unread
// direct messages grouped by sender id.
func (s *MessageService) UnreadCountsBySender(ctx context.Context, viewerID string) (map[string]int, error) {
	messages, err := s.queryByIndex(ctx, models.MessagesReceiverIndex, "receiverId", viewerID)
	if err != nil {
		return nil, err
	}
	return countUnreadBySender(messages, viewerID), nil
}

// MarkConversationRead marks every unread direct message from the
// counterpart to the viewer as read. This is the whole-conversation
// acknowledgment: one batch transition, no per-message receipts.
func (s *MessageService) MarkConversationRead(ctx context.Context, viewerID, counterpartID string) error {
	conversationID := models.DirectConversationID(viewerID, counterpartID)

	keyCondition := "conversationId = :conversationId"
	filter := "senderId = :counterpart AND #read = :false"
	input := &dynamodb.QueryInput{
		TableName:              aws.String(models.MessagesTable),
		KeyConditionExpression: aws.String(keyCondition),
		FilterExpression:       aws.String(filter),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: conversationID},
			":counterpart":    &types.AttributeValueMemberS{Value: counterpartID},
			":false":          &types.AttributeValueMemberBOOL{Value: false},
		},
		ExpressionAttributeNames: map[string]string{
			"#read": "read",
		},
	}

	items, err := s.Dynamo.QueryItemsWithInput(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to fetch unread messages: %w", err)
	}

	for _, item := range items {
		createdAt := utils.ExtractString(item, "createdAt")
		if createdAt == "" {
			continue
		}
		key := map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
			"createdAt":      &types.AttributeValueMemberS{Value: createdAt},
		}
		updateExpression := "SET #read = :true"
		expressionValues := map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		}
		expressionNames := map[string]string{
			"#read": "read",
		}
		if _, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, expressionValues, expressionNames, false); err != nil {
			log.Printf("❌ Failed to mark message %s as read: %v", utils.ExtractString(item, "messageId"), err)
		}
	}
	return nil
}

// queryByIndex fetches all direct messages where the given index attribute
// equals the user id. Group messages are filtered out.
func (s *MessageService) queryByIndex(ctx context.Context, indexName, keyAttr, userID string) ([]models.Message, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(models.MessagesTable),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String(keyAttr + " = :userId"),
		FilterExpression:       aws.String("attribute_not_exists(groupId)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
	}

	items, err := s.Dynamo.QueryItemsWithInput(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", indexName, err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// countUnreadBySender aggregates unread direct messages addressed to the
// viewer by sender id.
func countUnreadBySender(messages []models.Message, viewerID string) map[string]int {
	counts := make(map[string]int)
	for _, msg := range messages {
		if msg.IsGroup() || msg.Read || msg.ReceiverID != viewerID {
			continue
		}
		counts[msg.SenderID]++
	}
	return counts
}

// uniqueCounterparts extracts the distinct "other side" user ids from a set
// of direct messages involving the given user.
func uniqueCounterparts(messages []models.Message, userID string) []string {
	seen := make(map[string]struct{})
	var counterparts []string
	for _, msg := range messages {
		if msg.IsGroup() {
			continue
		}
		other := msg.ReceiverID
		if msg.SenderID != userID {
			other = msg.SenderID
		}
		if other == "" || other == userID {
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		counterparts = append(counterparts, other)
	}
	return counterparts
}
