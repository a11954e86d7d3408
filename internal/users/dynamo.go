package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/easyconsult/backend/pkg/logging"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoRepository persists users in a DynamoDB table. The table holds two
// item shapes keyed by pk: "user#<id>" for the record itself and
// "email#<email>" as a uniqueness guard pointing back at the user id.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoRepository builds a repository backed by the provided client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, logger: logger}
}

var _ Repository = (*DynamoRepository)(nil)

func userKey(id string) string     { return "user#" + id }
func emailKey(email string) string { return "email#" + normalizeEmail(email) }

type userItem struct {
	PK string `dynamodbav:"pk"`
	User
}

type emailGuardItem struct {
	PK     string `dynamodbav:"pk"`
	UserID string `dynamodbav:"userId"`
}

// Create writes the user and its email guard in one transaction so a
// concurrent registration with the same email cannot slip through.
func (r *DynamoRepository) Create(ctx context.Context, user *User) error {
	record, err := attributevalue.MarshalMap(userItem{PK: userKey(user.ID), User: *user})
	if err != nil {
		return fmt.Errorf("users: marshal user: %w", err)
	}
	guard, err := attributevalue.MarshalMap(emailGuardItem{PK: emailKey(user.Email), UserID: user.ID})
	if err != nil {
		return fmt.Errorf("users: marshal email guard: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                record,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return ErrEmailTaken
		}
		return fmt.Errorf("users: create: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       pkOf(userKey(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("users: get by id: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("users: unmarshal user: %w", err)
	}
	return &item.User, nil
}

// GetByEmail resolves the email guard item, then loads the user.
func (r *DynamoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       pkOf(emailKey(email)),
	})
	if err != nil {
		return nil, fmt.Errorf("users: get by email: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var guard emailGuardItem
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return nil, fmt.Errorf("users: unmarshal email guard: %w", err)
	}
	return r.GetByID(ctx, guard.UserID)
}

// UpdateProfile applies mutable profile fields to an existing user.
func (r *DynamoRepository) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error {
	address, err := attributevalue.Marshal(req.Address)
	if err != nil {
		return fmt.Errorf("users: marshal address: %w", err)
	}
	return r.update(ctx, id,
		"SET #name = :name, phone = :phone, dob = :dob, gender = :gender, address = :address",
		map[string]string{"#name": "name"},
		map[string]types.AttributeValue{
			":name":    &types.AttributeValueMemberS{Value: req.Name},
			":phone":   &types.AttributeValueMemberS{Value: req.Phone},
			":dob":     &types.AttributeValueMemberS{Value: req.DOB},
			":gender":  &types.AttributeValueMemberS{Value: req.Gender},
			":address": address,
		})
}

// UpdateImage sets the profile image reference.
func (r *DynamoRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	return r.update(ctx, id, "SET imageUrl = :image", nil,
		map[string]types.AttributeValue{":image": &types.AttributeValueMemberS{Value: imageURL}})
}

// UpdatePassword replaces the stored password hash.
func (r *DynamoRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, "SET passwordHash = :hash", nil,
		map[string]types.AttributeValue{":hash": &types.AttributeValueMemberS{Value: passwordHash}})
}

// Count returns the number of user items (email guards excluded).
func (r *DynamoRepository) Count(ctx context.Context) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		Select:           types.SelectCount,
		FilterExpression: aws.String("begins_with(pk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: "user#"},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("users: count: %w", err)
	}
	return int(out.Count), nil
}

func (r *DynamoRepository) update(ctx context.Context, id, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       pkOf(userKey(id)),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(pk)"),
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	_, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("users: update: %w", err)
	}
	return nil
}

func pkOf(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
	}
}
