package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"deptchat_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// NotificationService owns the durable notification records. Creation is
// always durable-first: the record is written before any live push is
// attempted, so an offline recipient recovers missed notifications with a
// pull query on reconnect. Every mutation is scoped to the requesting
// recipient by the table's key shape.
type NotificationService struct {
	Dynamo *DynamoService
}

// Prepare fills in the server-assigned fields of a notification.
func (s *NotificationService) Prepare(n *models.Notification) {
	if n.NotificationID == "" {
		n.NotificationID = uuid.New().String()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
}

// Create persists a single notification record.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	s.Prepare(n)
	if err := s.Dynamo.PutItem(ctx, models.NotificationsTable, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// CreateBatch persists one notification per recipient in a single batch
// write. Used for group-message fan-out.
func (s *NotificationService) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	items := make([]interface{}, 0, len(notifications))
	for i := range notifications {
		s.Prepare(&notifications[i])
		items = append(items, notifications[i])
	}
	if err := s.Dynamo.BatchWriteItems(ctx, models.NotificationsTable, items); err != nil {
		return fmt.Errorf("failed to store notification batch: %w", err)
	}
	return nil
}

// ListByRecipient returns the recipient's notifications newest-first with
// limit/skip pagination.
func (s *NotificationService) ListByRecipient(ctx context.Context, recipientID, recipientKind string, limit, skip int) ([]models.Notification, error) {
	notifications, err := s.queryRecipient(ctx, recipientID, recipientKind, false)
	if err != nil {
		return nil, err
	}
	sortNotificationsNewestFirst(notifications)
	return pageNotifications(notifications, limit, skip), nil
}

// UnreadCount returns the number of unread notifications for a recipient.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID, recipientKind string) (int, error) {
	notifications, err := s.queryRecipient(ctx, recipientID, recipientKind, true)
	if err != nil {
		return 0, err
	}
	return len(notifications), nil
}

// MarkRead marks one notification as read. The update key carries the
// recipient id, so a notification belonging to someone else is simply not
// found.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) (*models.Notification, error) {
	key := notificationKey(recipientID, notificationID)
	updateExpression := "SET isRead = :true"
	expressionValues := map[string]types.AttributeValue{
		":true": &types.AttributeValueMemberBOOL{Value: true},
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, models.NotificationsTable, updateExpression, key, expressionValues, nil, true)
	if err != nil {
		if err == ErrItemNotFound {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}

	var n models.Notification
	if err := attributevalue.UnmarshalMap(attrs, &n); err != nil {
		return nil, fmt.Errorf("failed to parse notification: %w", err)
	}
	return &n, nil
}

// MarkAllRead marks every unread notification of the recipient as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID, recipientKind string) error {
	unread, err := s.queryRecipient(ctx, recipientID, recipientKind, true)
	if err != nil {
		return err
	}

	for _, n := range unread {
		if _, err := s.MarkRead(ctx, recipientID, n.NotificationID); err != nil {
			log.Printf("❌ Failed to mark notification %s as read: %v", n.NotificationID, err)
		}
	}
	return nil
}

// Delete removes one notification, scoped to the requesting recipient.
func (s *NotificationService) Delete(ctx context.Context, recipientID, notificationID string) error {
	key := notificationKey(recipientID, notificationID)
	if err := s.Dynamo.DeleteItem(ctx, models.NotificationsTable, key, true); err != nil {
		if err == ErrItemNotFound {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *NotificationService) queryRecipient(ctx context.Context, recipientID, recipientKind string, unreadOnly bool) ([]models.Notification, error) {
	filter := "recipientType = :recipientType"
	expressionValues := map[string]types.AttributeValue{
		":recipientId":   &types.AttributeValueMemberS{Value: recipientID},
		":recipientType": &types.AttributeValueMemberS{Value: recipientKind},
	}
	if unreadOnly {
		filter += " AND isRead = :false"
		expressionValues[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(models.NotificationsTable),
		KeyConditionExpression:    aws.String("recipientId = :recipientId"),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: expressionValues,
	}

	items, err := s.Dynamo.QueryItemsWithInput(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	var notifications []models.Notification
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, fmt.Errorf("failed to parse notifications: %w", err)
	}
	return notifications, nil
}

func notificationKey(recipientID, notificationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"recipientId":    &types.AttributeValueMemberS{Value: recipientID},
		"notificationId": &types.AttributeValueMemberS{Value: notificationID},
	}
}

// sortNotificationsNewestFirst orders in-place by createdAt descending. The
// sort key of the table is the notification id, so ordering is done here.
func sortNotificationsNewestFirst(notifications []models.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
}

// pageNotifications applies skip/limit to an already-sorted slice.
func pageNotifications(notifications []models.Notification, limit, skip int) []models.Notification {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(notifications) {
		return []models.Notification{}
	}
	notifications = notifications[skip:]
	if limit > 0 && limit < len(notifications) {
		notifications = notifications[:limit]
	}
	return notifications
}
