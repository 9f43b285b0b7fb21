package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	DB *pgxpool.Pool
}

func (r *PGStore) Append(ctx context.Context, e *Entry) error {
	var meta []byte
	if e.Metadata != nil {
		var err error
		meta, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO audit_log(id, action, entity_type, entity_id, entity_name,
		                      actor_id, details, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.Action, e.EntityType, e.EntityID, e.EntityName,
		e.ActorID, e.Details, meta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *PGStore) Query(ctx context.Context, f Filter, limit int) ([]*Entry, error) {
	q := `SELECT id, action, entity_type, entity_id, entity_name, actor_id,
	             details, metadata, created_at
	      FROM audit_log WHERE 1=1`
	args := []any{}
	if f.Action != "" {
		args = append(args, f.Action)
		q += fmt.Sprintf(" AND action=$%d", len(args))
	}
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		q += fmt.Sprintf(" AND entity_type=$%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.EntityName,
			&e.ActorID, &e.Details, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

var _ Store = (*PGStore)(nil)
