package services

import (
	"context"
	"fmt"
	"deptchat_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IdentityService is the read-only directory over the two profile tables.
// It resolves an opaque user id to its account kind and display fields in a
// single call, hiding the fact that students and lecturers live in separate
// tables.
type IdentityService struct {
	Dynamo *DynamoService
}

// Resolve looks up a user id across both profile tables and returns its
// identity view. Returns ErrUserNotFound when the id matches neither table.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*models.UserIdentity, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.StudentsTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up student '%s': %w", userID, err)
	}
	if item != nil {
		var profile models.StudentProfile
		if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
			return nil, fmt.Errorf("failed to parse student profile: %w", err)
		}
		identity := profile.Identity()
		return &identity, nil
	}

	item, err = s.Dynamo.GetItem(ctx, models.LecturersTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lecturer '%s': %w", userID, err)
	}
	if item != nil {
		var profile models.LecturerProfile
		if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
			return nil, fmt.Errorf("failed to parse lecturer profile: %w", err)
		}
		identity := profile.Identity()
		return &identity, nil
	}

	return nil, ErrUserNotFound
}

// ResolveMany resolves a set of user ids, skipping ids that no longer exist
// (a counterpart may have been deleted since the conversation happened).
func (s *IdentityService) ResolveMany(ctx context.Context, userIDs []string) ([]models.UserIdentity, error) {
	identities := make([]models.UserIdentity, 0, len(userIDs))
	for _, id := range userIDs {
		identity, err := s.Resolve(ctx, id)
		if err == ErrUserNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	return identities, nil
}
