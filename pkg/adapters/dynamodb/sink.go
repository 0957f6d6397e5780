// Package dynamodb stores completed intakes as items in a DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const pkPrefix = "RECORD#"

// ErrDuplicateRecord is returned when an item with the same record ID already exists.
var ErrDuplicateRecord = errors.New("record already exists")

// dynamodbAPI is the subset of the DynamoDB client used by Sink.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *awsdynamodb.PutItemInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error)
}

// Sink implements ports.RecordSink. Each record is one item keyed by PK = RECORD#<id>.
// PutItem is atomic per item, so concurrent appends never interfere.
type Sink struct {
	api       dynamodbAPI
	tableName string
}

// New creates a Sink over an existing client.
func New(api dynamodbAPI, tableName string) (*Sink, error) {
	if api == nil {
		return nil, errors.New("dynamodb: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb: table name must not be empty")
	}
	return &Sink{api: api, tableName: tableName}, nil
}

// NewFromEnv builds a client from the default AWS configuration chain
// (environment, shared config, instance role).
func NewFromEnv(ctx context.Context, tableName, region string) (*Sink, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}
	return New(awsdynamodb.NewFromConfig(cfg), tableName)
}

// Append writes the record, refusing to overwrite an existing item.
func (s *Sink) Append(ctx context.Context, rec domain.Record) error {
	if rec.ID == "" {
		return errors.New("dynamodb: record id must not be empty")
	}

	_, err := s.api.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                recordToItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("dynamodb: %w: %s", ErrDuplicateRecord, rec.ID)
		}
		return fmt.Errorf("dynamodb: put record: %w", err)
	}
	return nil
}

func recordToItem(rec domain.Record) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: pkPrefix + rec.ID},
		"id":          &types.AttributeValueMemberS{Value: rec.ID},
		"phone":       &types.AttributeValueMemberS{Value: rec.Phone},
		"state":       &types.AttributeValueMemberS{Value: string(rec.State)},
		"last_update": &types.AttributeValueMemberN{Value: strconv.FormatFloat(epoch(rec.LastUpdate), 'f', -1, 64)},
	}

	// Empty attributes are omitted.
	optional := map[string]string{
		"first_name":   rec.FirstName,
		"last_name":    rec.LastName,
		"honoree_name": rec.HonoreeName,
		"relationship": rec.Relationship,
		"tshirt_size":  rec.TShirtSize,
		"image_url":    rec.ImageURL,
	}
	for k, v := range optional {
		if v != "" {
			item[k] = &types.AttributeValueMemberS{Value: v}
		}
	}
	return item
}

func epoch(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}
