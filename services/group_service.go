package services

import (
	"context"
	"fmt"

	"deptchat_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// GroupService resolves group membership for the message router. Groups are
// owned by the group management flow; the core reads them and only writes
// the lastMessageId pointer after a successful group send.
type GroupService struct {
	Dynamo *DynamoService
}

// GetGroup fetches a group by id. Returns ErrGroupNotFound when it does not
// exist.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	key := map[string]types.AttributeValue{
		"groupId": &types.AttributeValueMemberS{Value: groupID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.GroupsTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group '%s': %w", groupID, err)
	}
	if item == nil {
		return nil, ErrGroupNotFound
	}

	var group models.Group
	if err := attributevalue.UnmarshalMap(item, &group); err != nil {
		return nil, fmt.Errorf("failed to parse group: %w", err)
	}
	return &group, nil
}

// SetLastMessage updates the group's lastMessageId pointer.
func (s *GroupService) SetLastMessage(ctx context.Context, groupID, messageID string) error {
	key := map[string]types.AttributeValue{
		"groupId": &types.AttributeValueMemberS{Value: groupID},
	}
	updateExpression := "SET lastMessageId = :messageId"
	expressionValues := map[string]types.AttributeValue{
		":messageId": &types.AttributeValueMemberS{Value: messageID},
	}

	if _, err := s.Dynamo.UpdateItem(ctx, models.GroupsTable, updateExpression, key, expressionValues, nil, true); err != nil {
		return fmt.Errorf("failed to update lastMessageId for group '%s': %w", groupID, err)
	}
	return nil
}
