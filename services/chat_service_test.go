package services

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astromatch_server/models"
)

// fakeDynamoClient serves canned query pages through the DynamoAPI seam
type fakeDynamoClient struct {
	queryPages  []*dynamodb.QueryOutput
	queryInputs []*dynamodb.QueryInput
}

func (f *fakeDynamoClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, params)
	if len(f.queryPages) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	page := f.queryPages[0]
	f.queryPages = f.queryPages[1:]
	return page, nil
}

func (f *fakeDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamoClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

func (f *fakeDynamoClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func messageItem(t *testing.T, m models.Message) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(m)
	require.NoError(t, err)
	return item
}

func TestGetMessagesFiltersDeletedAndSortsAscending(t *testing.T) {
	fake := &fakeDynamoClient{queryPages: []*dynamodb.QueryOutput{{
		Items: []map[string]types.AttributeValue{
			messageItem(t, models.Message{ChatRoomID: "room-1", MessageID: "m3", SenderID: "bob", Content: "third", CreatedAt: "2026-08-01T10:03:00Z"}),
			messageItem(t, models.Message{ChatRoomID: "room-1", MessageID: "m2", SenderID: "alice", Content: "gone", IsDeleted: true, CreatedAt: "2026-08-01T10:02:00Z"}),
			messageItem(t, models.Message{ChatRoomID: "room-1", MessageID: "m1", SenderID: "alice", Content: "first", CreatedAt: "2026-08-01T10:01:00Z"}),
		},
	}}}
	service := &ChatService{Dynamo: &DynamoService{Client: fake}}

	messages, err := service.GetMessages(context.Background(), "room-1")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].MessageID)
	assert.Equal(t, "m3", messages[1].MessageID)
	for _, m := range messages {
		assert.False(t, m.IsDeleted)
	}
}

func TestGetMessagesPaginatesLongTranscripts(t *testing.T) {
	lastKey := map[string]types.AttributeValue{
		"chatRoomId": &types.AttributeValueMemberS{Value: "room-1"},
		"messageId":  &types.AttributeValueMemberS{Value: "m2"},
	}
	fake := &fakeDynamoClient{queryPages: []*dynamodb.QueryOutput{
		{
			Items: []map[string]types.AttributeValue{
				messageItem(t, models.Message{ChatRoomID: "room-1", MessageID: "m2", SenderID: "bob", Content: "later", CreatedAt: "2026-08-01T10:02:00Z"}),
			},
			LastEvaluatedKey: lastKey,
		},
		{
			Items: []map[string]types.AttributeValue{
				messageItem(t, models.Message{ChatRoomID: "room-1", MessageID: "m1", SenderID: "alice", Content: "earlier", CreatedAt: "2026-08-01T10:01:00Z"}),
			},
		},
	}}
	service := &ChatService{Dynamo: &DynamoService{Client: fake}}

	messages, err := service.GetMessages(context.Background(), "room-1")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].MessageID)
	assert.Equal(t, "m2", messages[1].MessageID)

	require.Len(t, fake.queryInputs, 2)
	assert.Nil(t, fake.queryInputs[0].ExclusiveStartKey)
	assert.Equal(t, lastKey, fake.queryInputs[1].ExclusiveStartKey)
}
