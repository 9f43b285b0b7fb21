package audit

import (
	"encoding/json"
	"time"
)

const (
	EventAuditRecorded = "AuditRecorded"
	TopicAuditRecorded = "backoffice.audit.recorded"
)

// Envelope is the wire wrapper for published audit events.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// Partition key = entity id, so events about one entity keep their order.
func PartitionKey(entityID string) []byte { return []byte(entityID) }
