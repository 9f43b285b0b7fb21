package audit

import "context"

// Store is the append-only persistence behind the Recorder.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	// Query returns entries newest-first. The limit is assumed pre-clamped.
	Query(ctx context.Context, f Filter, limit int) ([]*Entry, error)
}
