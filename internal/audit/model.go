package audit

import "time"

// Business actions worth an audit trail entry.
const (
	ActionProductCreated   = "PRODUCT_CREATED"
	ActionProductUpdated   = "PRODUCT_UPDATED"
	ActionProductDeleted   = "PRODUCT_DELETED"
	ActionProductRestocked = "PRODUCT_RESTOCKED"
	ActionUserCreated      = "USER_CREATED"
	ActionUserUpdated      = "USER_UPDATED"
	ActionUserStatusChange = "USER_STATUS_CHANGED"
	ActionUserDeleted      = "USER_DELETED"
	ActionSaleCreated      = "SALE_CREATED"
)

const (
	EntityProduct = "product"
	EntityUser    = "user"
	EntitySale    = "sale"
)

// Entry is append-only: once written it is never mutated or deleted. ActorID
// is a weak reference and may dangle after the account is removed.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	EntityName string         `json:"entityName,omitempty"`
	ActorID    string         `json:"performedBy,omitempty"`
	Details    string         `json:"details,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Filter narrows Query results; zero values match everything.
type Filter struct {
	Action     string
	EntityType string
}

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 200
)

// ClampLimit applies the [1, MaxQueryLimit] window. Zero means "not given"
// and takes the default; anything below 1 is raised to 1.
func ClampLimit(limit int) int {
	if limit == 0 {
		limit = DefaultQueryLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
