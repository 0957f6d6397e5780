package dynamodb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items in memory and honors attribute_not_exists(PK).
type fakeDynamo struct {
	mu      sync.Mutex
	items   map[string]map[string]types.AttributeValue
	order   []string
	putErr  error
	lastPut *awsdynamodb.PutItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *awsdynamodb.PutItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPut = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	pk := in.Item["PK"].(*types.AttributeValueMemberS).Value
	if _, exists := f.items[pk]; exists {
		return nil, &types.ConditionalCheckFailedException{Message: stringPtr("conditional check failed")}
	}
	f.items[pk] = in.Item
	f.order = append(f.order, pk)
	return &awsdynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) records() []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Record, 0, len(f.order))
	for _, pk := range f.order {
		item := f.items[pk]
		s := func(k string) string {
			if v, ok := item[k].(*types.AttributeValueMemberS); ok {
				return v.Value
			}
			return ""
		}
		out = append(out, domain.Record{
			ID:         s("id"),
			Phone:      s("phone"),
			State:      domain.State(s("state")),
			FirstName:  s("first_name"),
			TShirtSize: s("tshirt_size"),
		})
	}
	return out
}

func stringPtr(s string) *string { return &s }

func mustNewSink(t *testing.T, db *fakeDynamo) *Sink {
	t.Helper()
	s, err := New(db, "intake-records")
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "table")
	assert.Error(t, err)

	_, err = New(newFakeDynamo(), "  ")
	assert.Error(t, err)
}

func TestSink_Contract(t *testing.T) {
	db := newFakeDynamo()
	ports.RunRecordSinkContract(t, mustNewSink(t, db), func(t *testing.T) []domain.Record {
		return db.records()
	})
}

func TestSink_AppendItemShape(t *testing.T) {
	db := newFakeDynamo()
	sink := mustNewSink(t, db)

	rec := domain.Record{
		ID:          "rec-1",
		Phone:       "+15551234567",
		State:       domain.StateCompleted,
		FirstName:   "María",
		HonoreeName: "Carlos",
		TShirtSize:  "CHICO",
		LastUpdate:  time.Unix(1745000000, 500000000),
	}
	require.NoError(t, sink.Append(context.Background(), rec))

	in := db.lastPut
	require.NotNil(t, in)
	assert.Equal(t, "intake-records", *in.TableName)
	assert.Equal(t, "attribute_not_exists(PK)", *in.ConditionExpression)
	assert.Equal(t, "RECORD#rec-1", in.Item["PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1745000000.5", in.Item["last_update"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "Carlos", in.Item["honoree_name"].(*types.AttributeValueMemberS).Value)

	_, hasLastName := in.Item["last_name"]
	assert.False(t, hasLastName, "empty attributes are omitted")
}

func TestSink_DuplicateID(t *testing.T) {
	db := newFakeDynamo()
	sink := mustNewSink(t, db)
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, domain.Record{ID: "dup"}))
	err := sink.Append(ctx, domain.Record{ID: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestSink_PutError(t *testing.T) {
	db := newFakeDynamo()
	db.putErr = errors.New("throttled")
	sink := mustNewSink(t, db)

	err := sink.Append(context.Background(), domain.Record{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.NotErrorIs(t, err, ErrDuplicateRecord)
}

func TestSink_EmptyID(t *testing.T) {
	sink := mustNewSink(t, newFakeDynamo())
	assert.Error(t, sink.Append(context.Background(), domain.Record{}))
}
