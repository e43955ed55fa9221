// Package stream provides DynamoDB Streams handlers for the document store.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/vellum/dynamostore"
	"github.com/jacentio/vellum/internal/shard"
	"github.com/jacentio/vellum/schema"
)

// Handler releases unique-constraint rows when document deletes appear on
// the document table's stream. Deletes that bypass the store (TTL expiry,
// console, batch jobs) would otherwise leave claimed values behind forever.
type Handler struct {
	client   *dynamodb.Client
	config   dynamostore.Config
	registry *schema.Registry
	logger   *slog.Logger
}

// NewHandler creates a new stream handler. The registry supplies the
// unique property declarations per schema.
func NewHandler(client *dynamodb.Client, config dynamostore.Config, registry *schema.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client:   client,
		config:   config,
		registry: registry,
		logger:   logger,
	}
}

// HandleConstraintCleanup processes DynamoDB stream events, deleting the
// constraint rows held by removed documents. Designed to be used as an AWS
// Lambda handler. Processing is idempotent: deleting an already-released
// row is a no-op.
func (h *Handler) HandleConstraintCleanup(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	// Only document removals release constraints.
	if record.EventName != "REMOVE" {
		return nil
	}

	old := record.Change.OldImage
	schemaName := getStringAttr(old, "schema_name")
	docKey := getStringAttr(old, "doc_key")
	if schemaName == "" || docKey == "" {
		return nil
	}

	values := h.uniqueValues(schemaName, old)
	if len(values) == 0 {
		return nil
	}

	h.logger.Info("releasing constraint rows",
		"schema", schemaName,
		"docKey", docKey,
		"count", len(values),
	)

	for property, value := range values {
		pk := shard.ConstraintPK(schemaName, property, value)
		_, err := h.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(h.config.ConstraintTable),
			Key: map[string]dbtypes.AttributeValue{
				"pk": &dbtypes.AttributeValueMemberS{Value: pk},
				"sk": &dbtypes.AttributeValueMemberS{Value: "CONSTRAINT"},
			},
		})
		if err != nil {
			return fmt.Errorf("release constraint %s.%s: %w", schemaName, property, err)
		}
	}
	return nil
}

// uniqueValues extracts the removed record's values for unique properties
// from the stream image.
func (h *Handler) uniqueValues(schemaName string, image map[string]events.DynamoDBAttributeValue) map[string]string {
	sch, ok := h.registry.Lookup(schemaName)
	if !ok {
		return nil
	}
	data, ok := image["data"]
	if !ok || data.DataType() != events.DataTypeMap {
		return nil
	}
	fields := data.Map()

	values := make(map[string]string)
	for _, p := range sch.UniqueProperties() {
		av, ok := fields[p.Name()]
		if !ok {
			continue
		}
		switch av.DataType() {
		case events.DataTypeString:
			values[p.Name()] = av.String()
		case events.DataTypeNumber:
			values[p.Name()] = av.Number()
		}
	}
	return values
}

// getStringAttr extracts a string attribute from a stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, name string) string {
	av, ok := image[name]
	if !ok || av.DataType() != events.DataTypeString {
		return ""
	}
	return av.String()
}
