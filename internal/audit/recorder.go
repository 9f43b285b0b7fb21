package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/retailops/backoffice/internal/kafka"
)

// Publisher pushes recorded events onto the bus. Satisfied by
// kafka.Producer; nil means no publication.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Recorder appends business events best-effort: a failed write is logged and
// swallowed, never surfaced, so audit logging can never fail the operation
// it documents.
type Recorder struct {
	Store     Store
	Publisher Publisher
	Logger    *zap.Logger
	Service   string
}

// Record persists the entry. It always returns; storage errors only reach
// the operational log.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if err := r.Store.Append(ctx, &e); err != nil {
		r.Logger.Error("audit entry dropped",
			zap.String("action", e.Action),
			zap.String("entity_type", e.EntityType),
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
		return
	}

	if r.Publisher != nil {
		ev := Envelope{
			EventID:      uuid.NewString(),
			EventType:    EventAuditRecorded,
			EventVersion: 1,
			OccurredAt:   time.Now().UTC(),
			Producer:     r.Service,
			Payload:      kafkax.MustMarshal(e),
		}
		r.Publisher.Publish(PartitionKey(e.EntityID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(EventAuditRecorded)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}

// RecordAsync runs Record on its own goroutine with a fresh context, so the
// caller's response is never held up and a cancelled request context cannot
// abort the write.
func (r *Recorder) RecordAsync(e Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Record(ctx, e)
	}()
}

// Query returns entries newest-first, clamping limit to the allowed window.
func (r *Recorder) Query(ctx context.Context, f Filter, limit int) ([]*Entry, error) {
	return r.Store.Query(ctx, f, ClampLimit(limit))
}
