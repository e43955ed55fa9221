// Package dynamostore provides the DynamoDB storage collaborator for the
// document engine.
//
// Records live in a single table, one item per document, keyed by
// "schemaName#key". The document data travels as one map attribute,
// marshaled with the attributevalue feature package, so the engine's
// RawRecord shape round-trips without per-property table design.
//
// Unique property constraints are enforced with conditional writes against
// a constraint table: each claimed value owns a row whose partition key is
// a hash of (schema, property, value). A save that would steal a row held
// by another document fails with document.ErrDuplicateValue.
package dynamostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jacentio/vellum/document"
	"github.com/jacentio/vellum/internal/shard"
	"github.com/jacentio/vellum/schema"
)

// Store implements document.Store on DynamoDB.
type Store struct {
	client   *dynamodb.Client
	config   Config
	registry *schema.Registry
	log      zerolog.Logger
}

var _ document.Store = (*Store)(nil)

// New creates a new Store instance. Unique property constraints are only
// enforced when a registry is attached; see NewWithRegistry.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		log:    zerolog.Nop(),
	}
}

// NewWithRegistry creates a new Store instance that consults the registry
// for unique property declarations.
func NewWithRegistry(client *dynamodb.Client, config Config, registry *schema.Registry) *Store {
	s := New(client, config)
	s.registry = registry
	return s
}

// WithLogger returns a copy of the store that logs through log.
func (s *Store) WithLogger(log zerolog.Logger) *Store {
	clone := *s
	clone.log = log
	return &clone
}

// AllocateKey returns a fresh random key.
func (s *Store) AllocateKey(ctx context.Context, schemaName string) (string, error) {
	return uuid.NewString(), nil
}

// Load fetches a document record by key.
func (s *Store) Load(ctx context.Context, schemaName, key string) (map[string]any, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.Table),
		Key:       itemKey(schemaName, key),
	})
	if err != nil {
		return nil, &document.StoreError{Op: "load", Err: err}
	}
	if result.Item == nil {
		return nil, document.ErrNotFound
	}
	dataAttr, ok := result.Item["data"].(*types.AttributeValueMemberM)
	if !ok {
		return nil, &document.StoreError{Op: "load", Err: fmt.Errorf("item %s/%s has no data attribute", schemaName, key)}
	}
	var data map[string]any
	if err := attributevalue.Unmarshal(dataAttr, &data); err != nil {
		return nil, &document.StoreError{Op: "load", Err: fmt.Errorf("unmarshal data: %w", err)}
	}
	return data, nil
}

// Save writes a document record, claiming unique constraint rows in the
// same transaction when the schema declares unique properties.
func (s *Store) Save(ctx context.Context, schemaName, key string, data map[string]any) error {
	item, err := s.marshalItem(schemaName, key, data)
	if err != nil {
		return &document.StoreError{Op: "save", Err: err}
	}

	uniques := s.uniqueValues(schemaName, data)
	if len(uniques) == 0 {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.config.Table),
			Item:      item,
		})
		if err != nil {
			return &document.StoreError{Op: "save", Err: err}
		}
		return nil
	}
	return s.saveWithConstraints(ctx, schemaName, key, item, uniques)
}

// saveWithConstraints writes the record and its constraint rows in one
// transaction, releasing rows for values the record no longer holds.
func (s *Store) saveWithConstraints(ctx context.Context, schemaName, key string, item map[string]types.AttributeValue, uniques map[string]string) error {
	old, err := s.currentUniqueValues(ctx, schemaName, key)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{}

	// Release rows for values this document no longer holds.
	for property, oldValue := range old {
		if newValue, still := uniques[property]; still && newValue == oldValue {
			continue
		}
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.config.ConstraintTable),
				Key:       constraintRowKey(schemaName, property, oldValue),
			},
		})
	}

	// Claim rows for new values. The condition allows re-claiming our own
	// row, keeping overwrites by key idempotent.
	for property, value := range uniques {
		if oldValue, had := old[property]; had && oldValue == value {
			continue
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.config.ConstraintTable),
				Item: map[string]types.AttributeValue{
					"pk":          &types.AttributeValueMemberS{Value: shard.ConstraintPK(schemaName, property, value)},
					"sk":          &types.AttributeValueMemberS{Value: "CONSTRAINT"},
					"schema_name": &types.AttributeValueMemberS{Value: schemaName},
					"property":    &types.AttributeValueMemberS{Value: property},
					"value":       &types.AttributeValueMemberS{Value: value},
					"doc_key":     &types.AttributeValueMemberS{Value: key},
				},
				ConditionExpression: aws.String("attribute_not_exists(pk) OR doc_key = :key"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":key": &types.AttributeValueMemberS{Value: key},
				},
			},
		})
	}

	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(s.config.Table),
			Item:      item,
		},
	})

	s.log.Debug().
		Str("schema", schemaName).
		Str("key", key).
		Int("constraints", len(uniques)).
		Msg("transactional save with unique constraints")

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %s", document.ErrDuplicateValue, schemaName)
		}
		return &document.StoreError{Op: "save", Err: err}
	}
	return nil
}

// Delete removes a document record and releases its constraint rows.
func (s *Store) Delete(ctx context.Context, schemaName, key string) error {
	old, err := s.currentUniqueValues(ctx, schemaName, key)
	if err != nil {
		return err
	}

	if len(old) == 0 {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(s.config.Table),
			Key:                 itemKey(schemaName, key),
			ConditionExpression: aws.String("attribute_exists(pk)"),
		})
		if err != nil {
			if isConditionFailure(err) {
				return document.ErrNotFound
			}
			return &document.StoreError{Op: "delete", Err: err}
		}
		return nil
	}

	items := []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName:           aws.String(s.config.Table),
			Key:                 itemKey(schemaName, key),
			ConditionExpression: aws.String("attribute_exists(pk)"),
		},
	}}
	for property, value := range old {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.config.ConstraintTable),
				Key:       constraintRowKey(schemaName, property, value),
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		if isConditionFailure(err) {
			return document.ErrNotFound
		}
		return &document.StoreError{Op: "delete", Err: err}
	}
	return nil
}

// currentUniqueValues reads the stored record, if any, and extracts the
// values its schema marks unique. Used to release stale constraint rows.
func (s *Store) currentUniqueValues(ctx context.Context, schemaName, key string) (map[string]string, error) {
	if len(s.uniqueProps(schemaName)) == 0 {
		return nil, nil
	}
	data, err := s.Load(ctx, schemaName, key)
	if errors.Is(err, document.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.uniqueValues(schemaName, data), nil
}

// uniqueValues extracts the record's values for unique properties, as
// strings.
func (s *Store) uniqueValues(schemaName string, data map[string]any) map[string]string {
	props := s.uniqueProps(schemaName)
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for _, p := range props {
		v, ok := data[p.Name()]
		if !ok || v == nil {
			continue
		}
		out[p.Name()] = fmt.Sprint(v)
	}
	return out
}

func (s *Store) uniqueProps(schemaName string) []schema.Property {
	if s.registry == nil {
		return nil
	}
	sch, ok := s.registry.Lookup(schemaName)
	if !ok {
		return nil
	}
	return sch.UniqueProperties()
}

// marshalItem builds the DynamoDB item for a document record.
func (s *Store) marshalItem(schemaName, key string, data map[string]any) (map[string]types.AttributeValue, error) {
	dataAttr, err := attributevalue.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}
	return map[string]types.AttributeValue{
		"pk":          &types.AttributeValueMemberS{Value: ItemPK(schemaName, key)},
		"schema_name": &types.AttributeValueMemberS{Value: schemaName},
		"doc_key":     &types.AttributeValueMemberS{Value: key},
		"data":        dataAttr,
	}, nil
}

// ItemPK returns the partition key for a document record.
func ItemPK(schemaName, key string) string {
	return schemaName + "#" + key
}

func itemKey(schemaName, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: ItemPK(schemaName, key)},
	}
}

func constraintRowKey(schemaName, property, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: shard.ConstraintPK(schemaName, property, value)},
		"sk": &types.AttributeValueMemberS{Value: "CONSTRAINT"},
	}
}

// isConditionFailure reports whether err is a conditional write failure,
// directly or inside a cancelled transaction.
func isConditionFailure(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return true
	}
	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for _, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
