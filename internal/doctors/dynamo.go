package doctors

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
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoRepository persists doctors and their slot ledgers.
//
// Doctors live in one table keyed by pk ("doc#<id>" records plus
// "email#<email>" uniqueness guards). The ledger is NOT embedded in the
// doctor item: each (doctor, date) pair is its own item in the slots table,
// keyed doctorId/dateKey, with the booked time labels in a string set. That
// makes a reservation a single conditional UpdateItem, so two concurrent
// bookings of the same slot cannot both succeed.
type DynamoRepository struct {
	client     dynamoAPI
	tableName  string
	slotsTable string
	logger     *logging.Logger
}

// NewDynamoRepository builds a repository backed by the provided client.
func NewDynamoRepository(client dynamoAPI, tableName, slotsTable string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("doctors: dynamodb client cannot be nil")
	}
	if tableName == "" || slotsTable == "" {
		panic("doctors: table names cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, slotsTable: slotsTable, logger: logger}
}

var _ Repository = (*DynamoRepository)(nil)

func docKey(id string) string      { return "doc#" + id }
func emailKey(email string) string { return "email#" + normalizeEmail(email) }

type doctorItem struct {
	PK string `dynamodbav:"pk"`
	Doctor
}

type emailGuardItem struct {
	PK       string `dynamodbav:"pk"`
	DoctorID string `dynamodbav:"doctorId"`
}

type slotItem struct {
	DoctorID string   `dynamodbav:"doctorId"`
	DateKey  string   `dynamodbav:"dateKey"`
	Times    []string `dynamodbav:"times,stringset"`
}

// Create writes the doctor and its email guard in one transaction.
func (r *DynamoRepository) Create(ctx context.Context, doctor *Doctor) error {
	record, err := attributevalue.MarshalMap(doctorItem{PK: docKey(doctor.ID), Doctor: *doctor})
	if err != nil {
		return fmt.Errorf("doctors: marshal doctor: %w", err)
	}
	guard, err := attributevalue.MarshalMap(emailGuardItem{PK: emailKey(doctor.Email), DoctorID: doctor.ID})
	if err != nil {
		return fmt.Errorf("doctors: marshal email guard: %w", err)
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
		return fmt.Errorf("doctors: create: %w", err)
	}
	return nil
}

// GetByID retrieves a doctor by id.
func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       pkOf(docKey(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("doctors: get by id: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var item doctorItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("doctors: unmarshal doctor: %w", err)
	}
	return &item.Doctor, nil
}

// GetByEmail resolves the email guard item, then loads the doctor.
func (r *DynamoRepository) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       pkOf(emailKey(email)),
	})
	if err != nil {
		return nil, fmt.Errorf("doctors: get by email: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var guard emailGuardItem
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return nil, fmt.Errorf("doctors: unmarshal email guard: %w", err)
	}
	return r.GetByID(ctx, guard.DoctorID)
}

// List scans all doctor records.
func (r *DynamoRepository) List(ctx context.Context) ([]*Doctor, error) {
	var out []*Doctor
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			FilterExpression:  aws.String("begins_with(pk, :prefix)"),
			ExclusiveStartKey: startKey,
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: "doc#"},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("doctors: list: %w", err)
		}
		for _, raw := range page.Items {
			var item doctorItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("doctors: unmarshal doctor: %w", err)
			}
			doctor := item.Doctor
			out = append(out, &doctor)
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return out, nil
}

// UpdateProfile applies the doctor-editable fields.
func (r *DynamoRepository) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error {
	address, err := attributevalue.Marshal(req.Address)
	if err != nil {
		return fmt.Errorf("doctors: marshal address: %w", err)
	}
	return r.update(ctx, id, "SET fees = :fees, address = :address, available = :available",
		map[string]types.AttributeValue{
			":fees":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", req.Fees)},
			":address":   address,
			":available": &types.AttributeValueMemberBOOL{Value: req.Available},
		})
}

// SetAvailability flips the availability flag.
func (r *DynamoRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.update(ctx, id, "SET available = :available",
		map[string]types.AttributeValue{
			":available": &types.AttributeValueMemberBOOL{Value: available},
		})
}

// Delete removes the doctor, its email guard and its ledger items.
func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	doctor, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 pkOf(docKey(id)),
				ConditionExpression: aws.String("attribute_exists(pk)"),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       pkOf(emailKey(doctor.Email)),
			}},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return ErrNotFound
		}
		return fmt.Errorf("doctors: delete: %w", err)
	}

	// Ledger items are cleaned up after the record; a failure here leaves
	// harmless orphans behind, logged for the operator.
	ledger, err := r.Ledger(ctx, id)
	if err != nil {
		r.logger.Warn("doctors: failed to list ledger items for deleted doctor", "doctor_id", id, "error", err)
		return nil
	}
	for dateKey := range ledger {
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.slotsTable),
			Key:       slotKey(id, dateKey),
		}); err != nil {
			r.logger.Warn("doctors: failed to delete ledger item", "doctor_id", id, "date", dateKey, "error", err)
		}
	}
	return nil
}

// Ledger queries the slots table and reassembles the date -> labels view.
func (r *DynamoRepository) Ledger(ctx context.Context, doctorID string) (Ledger, error) {
	ledger := Ledger{}
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.slotsTable),
			KeyConditionExpression: aws.String("doctorId = :doc"),
			ExclusiveStartKey:      startKey,
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":doc": &types.AttributeValueMemberS{Value: doctorID},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("doctors: load ledger: %w", err)
		}
		for _, raw := range page.Items {
			var item slotItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("doctors: unmarshal ledger item: %w", err)
			}
			if len(item.Times) > 0 {
				ledger[item.DateKey] = item.Times
			}
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return ledger, nil
}

// ReserveSlot adds the time label to the (doctor, date) string set in a
// single conditional update. The condition refuses the write when the label
// is already a member, which is what makes concurrent double-booking
// impossible: exactly one of two racing updates passes the condition.
func (r *DynamoRepository) ReserveSlot(ctx context.Context, doctorID, dateKey, timeLabel string) error {
	if err := ValidateDateKey(dateKey); err != nil {
		return err
	}
	if err := ValidateTimeLabel(timeLabel); err != nil {
		return err
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.slotsTable),
		Key:                      slotKey(doctorID, dateKey),
		UpdateExpression:         aws.String("ADD #times :slot"),
		ConditionExpression:      aws.String("attribute_not_exists(#times) OR NOT contains(#times, :label)"),
		ExpressionAttributeNames: map[string]string{"#times": "times"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slot":  &types.AttributeValueMemberSS{Value: []string{timeLabel}},
			":label": &types.AttributeValueMemberS{Value: timeLabel},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrSlotTaken
		}
		return fmt.Errorf("doctors: reserve slot: %w", err)
	}
	return nil
}

// ReleaseSlot removes the time label from the set. DELETE on a string set is
// idempotent, so releasing an absent slot (or date) succeeds without effect.
func (r *DynamoRepository) ReleaseSlot(ctx context.Context, doctorID, dateKey, timeLabel string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.slotsTable),
		Key:                      slotKey(doctorID, dateKey),
		UpdateExpression:         aws.String("DELETE #times :slot"),
		ExpressionAttributeNames: map[string]string{"#times": "times"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slot": &types.AttributeValueMemberSS{Value: []string{timeLabel}},
		},
	})
	if err != nil {
		return fmt.Errorf("doctors: release slot: %w", err)
	}
	return nil
}

func (r *DynamoRepository) update(ctx context.Context, id, expr string, values map[string]types.AttributeValue) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       pkOf(docKey(id)),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(pk)"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("doctors: update: %w", err)
	}
	return nil
}

func pkOf(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
	}
}

func slotKey(doctorID, dateKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"doctorId": &types.AttributeValueMemberS{Value: doctorID},
		"dateKey":  &types.AttributeValueMemberS{Value: dateKey},
	}
}
