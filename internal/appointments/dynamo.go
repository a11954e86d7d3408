package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/easyconsult/backend/pkg/logging"
)

const (
	byUserIndex   = "by_user"
	byDoctorIndex = "by_doctor"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoRepository persists appointments, keyed by id, with global secondary
// indexes on userId and docId for the per-party listings.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoRepository builds a repository backed by the provided client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, logger: logger}
}

var _ Repository = (*DynamoRepository)(nil)

// Create writes a new appointment item.
func (r *DynamoRepository) Create(ctx context.Context, appointment *Appointment) error {
	item, err := attributevalue.MarshalMap(appointment)
	if err != nil {
		return fmt.Errorf("appointments: marshal appointment: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("appointments: create: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment by id.
func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: get by id: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var appointment Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &appointment); err != nil {
		return nil, fmt.Errorf("appointments: unmarshal appointment: %w", err)
	}
	return &appointment, nil
}

// ListByUser queries the by_user index, newest first.
func (r *DynamoRepository) ListByUser(ctx context.Context, userID string) ([]*Appointment, error) {
	return r.queryIndex(ctx, byUserIndex, "userId", userID)
}

// ListByDoctor queries the by_doctor index, newest first.
func (r *DynamoRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return r.queryIndex(ctx, byDoctorIndex, "docId", doctorID)
}

// ListAll scans the whole table, newest first.
func (r *DynamoRepository) ListAll(ctx context.Context) ([]*Appointment, error) {
	var out []*Appointment
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("appointments: list all: %w", err)
		}
		items, err := unmarshalItems(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	sortNewestFirst(out)
	return out, nil
}

// MarkCancelled sets the cancelled flag. Fulfilled appointments stay fulfilled.
func (r *DynamoRepository) MarkCancelled(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "cancelled", "isCompleted", ErrAlreadyCompleted)
}

// MarkCompleted sets the fulfilled flag. Cancelled appointments stay cancelled.
func (r *DynamoRepository) MarkCompleted(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "isCompleted", "cancelled", ErrAlreadyCancelled)
}

// MarkPaid records a confirmed payment.
func (r *DynamoRepository) MarkPaid(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "payment", "", nil)
}

// setFlag flips a bool attribute to true. When exclude names another flag the
// update is rejected while that flag is set, so the cancelled and fulfilled
// states stay mutually exclusive even under concurrent updates.
func (r *DynamoRepository) setFlag(ctx context.Context, id, field, exclude string, conflict error) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:         aws.String("SET #flag = :true"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#flag": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}
	if exclude != "" {
		input.ConditionExpression = aws.String("attribute_exists(id) AND (attribute_not_exists(#other) OR #other = :false)")
		input.ExpressionAttributeNames["#other"] = exclude
		input.ExpressionAttributeValues[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	_, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			// A returned item means the row exists and the other flag blocked us.
			if conflict != nil && len(conditionFailed.Item) > 0 {
				return conflict
			}
			return ErrNotFound
		}
		return fmt.Errorf("appointments: set %s: %w", field, err)
	}
	return nil
}

func (r *DynamoRepository) queryIndex(ctx context.Context, index, key, value string) ([]*Appointment, error) {
	var out []*Appointment
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#key = :value"),
			ExclusiveStartKey:      startKey,
			ExpressionAttributeNames: map[string]string{
				"#key": key,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":value": &types.AttributeValueMemberS{Value: value},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("appointments: query %s: %w", index, err)
		}
		items, err := unmarshalItems(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	sortNewestFirst(out)
	return out, nil
}

func unmarshalItems(raw []map[string]types.AttributeValue) ([]*Appointment, error) {
	out := make([]*Appointment, 0, len(raw))
	for _, item := range raw {
		var appointment Appointment
		if err := attributevalue.UnmarshalMap(item, &appointment); err != nil {
			return nil, fmt.Errorf("appointments: unmarshal appointment: %w", err)
		}
		out = append(out, &appointment)
	}
	return out, nil
}

func sortNewestFirst(items []*Appointment) {
	sort.Slice(items, func(i, j int) bool { return items[i].BookedAt.After(items[j].BookedAt) })
}
