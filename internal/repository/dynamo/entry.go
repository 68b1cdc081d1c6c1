// Package dynamo stores vault entries in a DynamoDB table with partition key
// owner_id and sort key record_id.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// Internal adapter interface to enable mocking without AWS.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

const (
	attrOwnerID  = "owner_id"
	attrRecordID = "record_id"
)

var _ model.EntryStore = (*EntryRepository)(nil)

type entryItem struct {
	OwnerID          string    `dynamodbav:"owner_id"`
	RecordID         string    `dynamodbav:"record_id"`
	Label            string    `dynamodbav:"label"`
	Location         string    `dynamodbav:"location"`
	AccountName      string    `dynamodbav:"account_name"`
	SecretCiphertext []byte    `dynamodbav:"secret_ciphertext"`
	Notes            string    `dynamodbav:"notes"`
	CreatedAt        time.Time `dynamodbav:"created_at"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
}

type EntryRepository struct {
	api   dynamoAPI
	table string
}

// NewClient builds a DynamoDB client from cfg. A non-empty endpoint overrides the
// service endpoint (e.g. DynamoDB Local).
func NewClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// NewEntryRepository creates a repository using a real DynamoDB client.
func NewEntryRepository(client *dynamodb.Client, table string) *EntryRepository {
	return NewEntryRepositoryWithAPI(client, table)
}

// NewEntryRepositoryWithAPI allows injecting a mockable API (used in tests).
func NewEntryRepositoryWithAPI(api dynamoAPI, table string) *EntryRepository {
	return &EntryRepository{api: api, table: table}
}

func (r *EntryRepository) Create(ctx context.Context, entry model.Entry) error {
	item, err := attributevalue.MarshalMap(toItem(entry))
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + attrOwnerID + ")"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to put entry: %w", err)
	}
	return nil
}

// Replace updates every mutable attribute of an existing item. created_at is left untouched.
func (r *EntryRepository) Replace(ctx context.Context, entry model.Entry) error {
	values, err := attributevalue.MarshalMap(map[string]any{
		":label":             entry.Label,
		":location":          entry.Location,
		":account_name":      entry.AccountName,
		":secret_ciphertext": entry.SecretCiphertext,
		":notes":             entry.Notes,
		":updated_at":        entry.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	_, err = r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key:       key(entry.OwnerID, entry.ID),
		UpdateExpression: aws.String("SET #label = :label, #location = :location, #account_name = :account_name, " +
			"#secret_ciphertext = :secret_ciphertext, #notes = :notes, #updated_at = :updated_at"),
		ConditionExpression: aws.String("attribute_exists(" + attrOwnerID + ")"),
		ExpressionAttributeNames: map[string]string{
			"#label":             "label",
			"#location":          "location",
			"#account_name":      "account_name",
			"#secret_ciphertext": "secret_ciphertext",
			"#notes":             "notes",
			"#updated_at":        "updated_at",
		},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Entry, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            key(ownerID, recordID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}
	if len(out.Item) == 0 {
		return model.Entry{}, model.ErrNotFound
	}
	return fromAttributes(out.Item)
}

func (r *EntryRepository) Delete(ctx context.Context, ownerID, recordID uuid.UUID) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 key(ownerID, recordID),
		ConditionExpression: aws.String("attribute_exists(" + attrOwnerID + ")"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) Scan(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	p := dynamodb.NewQueryPaginator(r.api, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String(attrOwnerID + " = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID.String()},
		},
		ConsistentRead: aws.Bool(true),
	})

	var entries []model.Entry
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query entries: %w", err)
		}
		for _, item := range page.Items {
			e, err := fromAttributes(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func key(ownerID, recordID uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrOwnerID:  &types.AttributeValueMemberS{Value: ownerID.String()},
		attrRecordID: &types.AttributeValueMemberS{Value: recordID.String()},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func toItem(e model.Entry) entryItem {
	return entryItem{
		OwnerID:          e.OwnerID.String(),
		RecordID:         e.ID.String(),
		Label:            e.Label,
		Location:         e.Location,
		AccountName:      e.AccountName,
		SecretCiphertext: e.SecretCiphertext,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func fromAttributes(av map[string]types.AttributeValue) (model.Entry, error) {
	var item entryItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return model.Entry{}, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	ownerID, err := uuid.Parse(item.OwnerID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("invalid owner_id attribute: %w", err)
	}
	recordID, err := uuid.Parse(item.RecordID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("invalid record_id attribute: %w", err)
	}
	return model.Entry{
		OwnerID:          ownerID,
		ID:               recordID,
		Label:            item.Label,
		Location:         item.Location,
		AccountName:      item.AccountName,
		SecretCiphertext: item.SecretCiphertext,
		Notes:            item.Notes,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}, nil
}
