package appointments

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	updateInputs []*dynamodb.UpdateItemInput
	updateErr    error
}

func (m *mockDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, input)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamo) Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockDynamo) Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

func TestMarkCancelledGuardsAgainstCompleted(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewDynamoRepository(mock, "appointments", nil)

	require.NoError(t, repo.MarkCancelled(context.Background(), "apt-1"))
	require.Len(t, mock.updateInputs, 1)

	input := mock.updateInputs[0]
	require.NotNil(t, input.ConditionExpression)
	assert.Equal(t, "attribute_exists(id) AND (attribute_not_exists(#other) OR #other = :false)", *input.ConditionExpression)
	assert.Equal(t, "isCompleted", input.ExpressionAttributeNames["#other"])
	assert.Equal(t, "cancelled", input.ExpressionAttributeNames["#flag"])
}

func TestMarkCompletedGuardsAgainstCancelled(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewDynamoRepository(mock, "appointments", nil)

	require.NoError(t, repo.MarkCompleted(context.Background(), "apt-1"))
	require.Len(t, mock.updateInputs, 1)

	assert.Equal(t, "cancelled", mock.updateInputs[0].ExpressionAttributeNames["#other"])
	assert.Equal(t, "isCompleted", mock.updateInputs[0].ExpressionAttributeNames["#flag"])
}

func TestMarkPaidHasNoExclusionGuard(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewDynamoRepository(mock, "appointments", nil)

	require.NoError(t, repo.MarkPaid(context.Background(), "apt-1"))
	require.Len(t, mock.updateInputs, 1)

	input := mock.updateInputs[0]
	require.NotNil(t, input.ConditionExpression)
	assert.Equal(t, "attribute_exists(id)", *input.ConditionExpression)
	assert.NotContains(t, input.ExpressionAttributeNames, "#other")
}

func TestMarkCancelledConflictMapsToAlreadyCompleted(t *testing.T) {
	// A condition failure that hands back the old item means the row exists
	// and the fulfilled flag blocked the update.
	mock := &mockDynamo{updateErr: &types.ConditionalCheckFailedException{
		Item: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "apt-1"},
		},
	}}
	repo := NewDynamoRepository(mock, "appointments", nil)

	err := repo.MarkCancelled(context.Background(), "apt-1")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	err = repo.MarkCompleted(context.Background(), "apt-1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestMarkFlagsMissingRowMapsToNotFound(t *testing.T) {
	mock := &mockDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	repo := NewDynamoRepository(mock, "appointments", nil)

	assert.ErrorIs(t, repo.MarkCancelled(context.Background(), "ghost"), ErrNotFound)
	assert.ErrorIs(t, repo.MarkCompleted(context.Background(), "ghost"), ErrNotFound)
	assert.ErrorIs(t, repo.MarkPaid(context.Background(), "ghost"), ErrNotFound)
}
