package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoService wraps the DynamoDB client with the small set of operations
// the domain services need.
type DynamoService struct {
	Client *dynamodb.Client
}

// InitializeDynamoDBClient initializes the DynamoDB client
func InitializeDynamoDBClient() *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

// PutItem marshals and stores an item.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table '%s': %w", tableName, err)
	}

	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      marshaledItem,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// GetItem retrieves an item by key. A missing item is returned as (nil, nil)
// so callers can map absence to their own not-found errors.
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	return output.Item, nil
}

// QueryItems queries a table partition using a KeyConditionExpression.
// Results come back in sort-key order; set scanForward to false for
// newest-first.
func (ds *DynamoService) QueryItems(
	ctx context.Context,
	tableName string,
	keyConditionExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	limit int32,
	scanForward bool,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:                 &tableName,
		KeyConditionExpression:    &keyConditionExpression,
		ExpressionAttributeValues: expressionAttributeValues,
		ExpressionAttributeNames:  expressionAttributeNames,
		ScanIndexForward:          &scanForward,
	}
	if limit > 0 {
		input.Limit = &limit
	}
	return ds.QueryItemsWithInput(ctx, input)
}

// QueryItemsWithInput runs a caller-built query, following pagination until
// the result set or the requested limit is exhausted.
func (ds *DynamoService) QueryItemsWithInput(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query table '%s': %w", *input.TableName, err)
		}
		items = append(items, output.Items...)
		if output.LastEvaluatedKey == nil {
			break
		}
		if input.Limit != nil && int32(len(items)) >= *input.Limit {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	return items, nil
}

// UpdateItem applies an update expression to an item. When requireExists is
// set the update is conditioned on the item being present, and
// ErrItemNotFound is returned if it is not.
func (ds *DynamoService) UpdateItem(
	ctx context.Context,
	tableName string,
	updateExpression string,
	key map[string]types.AttributeValue,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	requireExists bool,
) (map[string]types.AttributeValue, error) {
	if len(key) == 0 {
		return nil, errors.New("update failed: key cannot be empty")
	}
	if updateExpression == "" {
		return nil, errors.New("update failed: updateExpression cannot be empty")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                &tableName,
		Key:                      key,
		UpdateExpression:         &updateExpression,
		ExpressionAttributeNames: expressionAttributeNames,
		ReturnValues:             types.ReturnValueAllNew,
	}
	if len(expressionAttributeValues) > 0 {
		input.ExpressionAttributeValues = expressionAttributeValues
	}
	if requireExists {
		condition := existsCondition(key)
		input.ConditionExpression = &condition
	}

	output, err := ds.Client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	return output.Attributes, nil
}

// DeleteItem removes an item. When requireExists is set, a missing item is
// reported as ErrItemNotFound instead of succeeding silently.
func (ds *DynamoService) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, requireExists bool) error {
	input := &dynamodb.DeleteItemInput{
		TableName: &tableName,
		Key:       key,
	}
	if requireExists {
		condition := existsCondition(key)
		input.ConditionExpression = &condition
	}

	_, err := ds.Client.DeleteItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// BatchWriteItems stores a batch of items, chunked to DynamoDB's 25-item
// batch limit. Unprocessed items are retried once before giving up.
func (ds *DynamoService) BatchWriteItems(ctx context.Context, tableName string, items []interface{}) error {
	const batchLimit = 25

	for start := 0; start < len(items); start += batchLimit {
		end := start + batchLimit
		if end > len(items) {
			end = len(items)
		}

		var requests []types.WriteRequest
		for _, item := range items[start:end] {
			marshaled, err := attributevalue.MarshalMap(item)
			if err != nil {
				return fmt.Errorf("failed to marshal batch item for table '%s': %w", tableName, err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: marshaled},
			})
		}

		pending := map[string][]types.WriteRequest{tableName: requests}
		for attempt := 0; attempt < 2 && len(pending) > 0; attempt++ {
			output, err := ds.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return fmt.Errorf("failed to batch write to table '%s': %w", tableName, err)
			}
			pending = output.UnprocessedItems
		}
		if len(pending) > 0 {
			return fmt.Errorf("batch write to table '%s' left unprocessed items", tableName)
		}
	}
	return nil
}

// existsCondition builds an attribute_exists condition on one of the key
// attributes, which is enough to assert item presence.
func existsCondition(key map[string]types.AttributeValue) string {
	for name := range key {
		return "attribute_exists(" + name + ")"
	}
	return ""
}
