package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type failingStore struct{}

func (failingStore) Append(ctx context.Context, e *Entry) error {
	return errors.New("disk on fire")
}

func (failingStore) Query(ctx context.Context, f Filter, limit int) ([]*Entry, error) {
	return nil, nil
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	r := &Recorder{Store: failingStore{}, Logger: zaptest.NewLogger(t), Service: "test"}

	// Must not panic, must not surface the error.
	r.Record(context.Background(), Entry{
		Action:     ActionSaleCreated,
		EntityType: EntitySale,
		EntityID:   "s1",
	})
}

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore()
	r := &Recorder{Store: store, Logger: zaptest.NewLogger(t), Service: "test"}

	r.Record(context.Background(), Entry{
		Action:     ActionProductCreated,
		EntityType: EntityProduct,
		EntityID:   "p1",
	})

	entries, err := store.Query(context.Background(), Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestQueryFiltersAndOrdersNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	r := &Recorder{Store: store, Logger: zaptest.NewLogger(t), Service: "test"}

	base := time.Now().UTC()
	for i, action := range []string{ActionProductCreated, ActionSaleCreated, ActionSaleCreated, ActionUserCreated} {
		r.Record(context.Background(), Entry{
			ID:         string(rune('a' + i)),
			Action:     action,
			EntityType: EntitySale,
			EntityID:   "e1",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
	}

	entries, err := r.Query(context.Background(), Filter{Action: ActionSaleCreated}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
	for _, e := range entries {
		assert.Equal(t, ActionSaleCreated, e.Action)
	}
}

func TestQueryLimit(t *testing.T) {
	store := NewMemoryStore()
	r := &Recorder{Store: store, Logger: zaptest.NewLogger(t), Service: "test"}

	for i := 0; i < 60; i++ {
		r.Record(context.Background(), Entry{
			Action:     ActionSaleCreated,
			EntityType: EntitySale,
			EntityID:   "e1",
		})
	}

	entries, err := r.Query(context.Background(), Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultQueryLimit)

	entries, err = r.Query(context.Background(), Filter{}, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

type capturePublisher struct {
	keys   [][]byte
	values [][]byte
}

func (p *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
}

func TestRecordPublishesEnvelope(t *testing.T) {
	store := NewMemoryStore()
	pub := &capturePublisher{}
	r := &Recorder{Store: store, Publisher: pub, Logger: zaptest.NewLogger(t), Service: "test-svc"}

	r.Record(context.Background(), Entry{
		Action:     ActionSaleCreated,
		EntityType: EntitySale,
		EntityID:   "s1",
	})

	require.Len(t, pub.values, 1)
	assert.Equal(t, []byte("s1"), pub.keys[0])

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	assert.Equal(t, EventAuditRecorded, env.EventType)
	assert.Equal(t, "test-svc", env.Producer)

	var payload Entry
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, ActionSaleCreated, payload.Action)
}

func TestRecordSkipsPublishWhenStoreFails(t *testing.T) {
	pub := &capturePublisher{}
	r := &Recorder{Store: failingStore{}, Publisher: pub, Logger: zaptest.NewLogger(t), Service: "test"}

	r.Record(context.Background(), Entry{Action: ActionSaleCreated, EntityType: EntitySale, EntityID: "s1"})
	assert.Empty(t, pub.values)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultQueryLimit, ClampLimit(0))
	assert.Equal(t, 1, ClampLimit(-5))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 200, ClampLimit(200))
	assert.Equal(t, MaxQueryLimit, ClampLimit(1000))
}
